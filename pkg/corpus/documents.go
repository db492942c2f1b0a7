package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/curalab/triage/internal"
)

var log = internal.GetLogger()

// Relative paths of the corpus documents inside the data directory.
// The layout mirrors the upstream medical dataset dump.
const (
	SymptomDiseaseFile     = "knowledge_base/symptom_disease_dataset.json"
	SymptomSeverityFile    = "knowledge_base/symptom_severity.json"
	SymptomDescriptionFile = "knowledge_base/symptom_description.json"
	SymptomPrecautionFile  = "knowledge_base/symptom_precaution.json"
	FeverDatasetFile       = "knowledge_base/fever_dataset.json"
	RiskAssessmentFile     = "decision_trees/risk_assessment.json"
	TriageProtocolFile     = "decision_trees/triage_protocol.json"
	EmergencyMarkersFile   = "decision_trees/emergency_markers.json"
	ConsultationsFile      = "training_conversations/sample_consultations.json"
)

// SymptomDiseaseDoc maps symptom sets to disease labels.
type SymptomDiseaseDoc struct {
	Entries []SymptomDiseaseEntry `json:"symptom_disease_data"`
}

type SymptomDiseaseEntry struct {
	Symptoms []string `json:"symptoms"`
	Disease  string   `json:"disease"`
}

// SymptomSeverityDoc holds per-symptom severity weights on a 1-10 scale.
type SymptomSeverityDoc struct {
	Entries []SymptomSeverityEntry `json:"symptom_severity"`
}

type SymptomSeverityEntry struct {
	Symptom        string `json:"symptom"`
	SeverityWeight int    `json:"severity_weight"`
}

// SymptomDescriptionDoc carries free-text symptom descriptions.
type SymptomDescriptionDoc struct {
	Symptoms []SymptomDescriptionEntry `json:"symptoms"`
}

type SymptomDescriptionEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SymptomPrecautionDoc carries precaution text per symptom and per disease.
type SymptomPrecautionDoc struct {
	SymptomPrecautions []SymptomPrecautionEntry `json:"symptom_precautions"`
	DiseasePrecautions []DiseasePrecautionEntry `json:"disease_precautions"`
}

type SymptomPrecautionEntry struct {
	Symptom     string   `json:"symptom"`
	Precautions []string `json:"precautions"`
}

type DiseasePrecautionEntry struct {
	Disease     string   `json:"disease"`
	Precautions []string `json:"precautions"`
}

// FeverDatasetDoc is the fever case-row table. Symptom columns hold
// "Yes"/"No" strings; Temperature is Fahrenheit as a string.
type FeverDatasetDoc struct {
	Cases []FeverCase `json:"fever_cases"`
}

type FeverCase struct {
	Headache    string `json:"Headache"`
	BodyAche    string `json:"Body_Ache"`
	Fatigue     string `json:"Fatigue"`
	Chills      string `json:"Chills"`
	Nausea      string `json:"Nausea"`
	Dizziness   string `json:"Dizziness"`
	Cough       string `json:"Cough"`
	SoreThroat  string `json:"Sore_Throat"`
	RunnyNose   string `json:"Runny_Nose"`
	MusclePain  string `json:"Muscle_Pain"`
	Temperature string `json:"Temperature"`
	Diagnosis   string `json:"Diagnosis"`
}

// RiskAssessmentDoc lists risk factors with a 1-10 risk level.
type RiskAssessmentDoc struct {
	RiskFactors []RiskFactor `json:"risk_factors"`
}

type RiskFactor struct {
	Condition string `json:"condition"`
	RiskLevel int    `json:"risk_level"`
	Weight    int    `json:"weight"`
}

// TriageProtocolDoc lists triage protocols with a priority class.
type TriageProtocolDoc struct {
	Protocols []TriageProtocol `json:"protocols"`
}

type TriageProtocol struct {
	Conditions []string `json:"conditions"`
	Priority   string   `json:"priority"`
}

// EmergencyMarkersDoc lists symptoms and symptom combinations that always
// indicate an emergency.
type EmergencyMarkersDoc struct {
	EmergencySymptoms    []string              `json:"emergency_symptoms"`
	CriticalSymptoms     []string              `json:"critical_symptoms"`
	CriticalCombinations []CriticalCombination `json:"critical_combinations"`
}

type CriticalCombination struct {
	Symptoms []string `json:"symptoms"`
	Reason   string   `json:"reason"`
}

// ConsultationsDoc holds labeled sample consultations.
type ConsultationsDoc struct {
	Conversations []Consultation `json:"conversations"`
}

type Consultation struct {
	Symptoms    []string `json:"symptoms"`
	IsEmergency bool     `json:"is_emergency"`
	PatientAge  string   `json:"patient_age,omitempty"`
	Complaint   string   `json:"initial_complaint,omitempty"`
}

// Documents is the parsed corpus. Any document may be zero-valued when its
// file is missing or unreadable; loading never aborts on a single bad file.
type Documents struct {
	SymptomDisease   SymptomDiseaseDoc
	SymptomSeverity  SymptomSeverityDoc
	Descriptions     SymptomDescriptionDoc
	Precautions      SymptomPrecautionDoc
	FeverDataset     FeverDatasetDoc
	RiskAssessment   RiskAssessmentDoc
	TriageProtocol   TriageProtocolDoc
	EmergencyMarkers EmergencyMarkersDoc
	Consultations    ConsultationsDoc
}

// LoadDocuments reads every known corpus file under dataDir. Missing or
// malformed files are logged and skipped.
func LoadDocuments(dataDir string) *Documents {
	docs := &Documents{}
	loadJSON(dataDir, SymptomDiseaseFile, &docs.SymptomDisease)
	loadJSON(dataDir, SymptomSeverityFile, &docs.SymptomSeverity)
	loadJSON(dataDir, SymptomDescriptionFile, &docs.Descriptions)
	loadJSON(dataDir, SymptomPrecautionFile, &docs.Precautions)
	loadJSON(dataDir, FeverDatasetFile, &docs.FeverDataset)
	loadJSON(dataDir, RiskAssessmentFile, &docs.RiskAssessment)
	loadJSON(dataDir, TriageProtocolFile, &docs.TriageProtocol)
	loadJSON(dataDir, EmergencyMarkersFile, &docs.EmergencyMarkers)
	loadJSON(dataDir, ConsultationsFile, &docs.Consultations)
	return docs
}

func loadJSON(dataDir, relPath string, out interface{}) {
	path := filepath.Join(dataDir, filepath.FromSlash(relPath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("corpus file %s not found", relPath)
		} else {
			log.Warnf("corpus file %s unreadable: %v", relPath, err)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warnf("corpus file %s malformed, skipping: %v", relPath, err)
	}
}
