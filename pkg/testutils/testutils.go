// Package testutils provides corpus fixtures shared by tests across
// packages.
package testutils

import (
	"os"
	"path/filepath"

	"github.com/curalab/triage/pkg/corpus"
)

// corpusFixtures maps corpus-relative paths to a small but fully labeled
// dataset: at least two disease labels, severity weights, and both
// emergency classes, so every training target is exercisable.
var corpusFixtures = map[string]string{
	corpus.SymptomDiseaseFile: `{
  "symptom_disease_data": [
    {"symptoms": ["fever", "headache", "body_ache"], "disease": "Flu"},
    {"symptoms": ["fever", "chills", "fatigue"], "disease": "Flu"},
    {"symptoms": ["runny_nose", "sore_throat", "cough"], "disease": "Common Cold"},
    {"symptoms": ["runny_nose", "sneezing"], "disease": "Common Cold"},
    {"symptoms": ["chest_pain", "shortness_of_breath", "sweating"], "disease": "Heart Attack"},
    {"symptoms": ["nausea", "vomiting", "diarrhea"], "disease": "Gastroenteritis"},
    {"symptoms": ["headache", "nausea", "light_sensitivity"], "disease": "Migraine"}
  ]
}`,
	corpus.SymptomSeverityFile: `{
  "symptom_severity": [
    {"symptom": "fever", "severity_weight": 5},
    {"symptom": "high_fever", "severity_weight": 8},
    {"symptom": "headache", "severity_weight": 3},
    {"symptom": "body_ache", "severity_weight": 3},
    {"symptom": "chills", "severity_weight": 3},
    {"symptom": "fatigue", "severity_weight": 2},
    {"symptom": "runny_nose", "severity_weight": 1},
    {"symptom": "sore_throat", "severity_weight": 2},
    {"symptom": "cough", "severity_weight": 2},
    {"symptom": "sneezing", "severity_weight": 1},
    {"symptom": "nausea", "severity_weight": 4},
    {"symptom": "vomiting", "severity_weight": 5},
    {"symptom": "diarrhea", "severity_weight": 5},
    {"symptom": "dizziness", "severity_weight": 4},
    {"symptom": "chest_pain", "severity_weight": 9},
    {"symptom": "shortness_of_breath", "severity_weight": 8},
    {"symptom": "light_sensitivity", "severity_weight": 3}
  ]
}`,
	corpus.SymptomDescriptionFile: `{
  "symptoms": [
    {"name": "fever", "description": "Elevated body temperature above 100.4F"},
    {"name": "chest_pain", "description": "Pain or pressure in the chest"}
  ]
}`,
	corpus.SymptomPrecautionFile: `{
  "symptom_precautions": [
    {"symptom": "fever", "precautions": ["drink fluids", "rest", "monitor temperature"]},
    {"symptom": "cough", "precautions": ["stay hydrated", "use a humidifier"]}
  ],
  "disease_precautions": [
    {"disease": "Flu", "precautions": ["rest", "stay hydrated", "avoid contact with others"]},
    {"disease": "Heart Attack", "precautions": ["call emergency services immediately"]}
  ]
}`,
	corpus.FeverDatasetFile: `{
  "fever_cases": [
    {"Headache": "Yes", "Body_Ache": "Yes", "Fatigue": "Yes", "Chills": "Yes", "Nausea": "No", "Dizziness": "No", "Cough": "No", "Sore_Throat": "No", "Runny_Nose": "No", "Muscle_Pain": "Yes", "Temperature": "103.5", "Diagnosis": "Influenza"},
    {"Headache": "Yes", "Body_Ache": "No", "Fatigue": "Yes", "Chills": "No", "Nausea": "No", "Dizziness": "Yes", "Cough": "Yes", "Sore_Throat": "Yes", "Runny_Nose": "Yes", "Muscle_Pain": "No", "Temperature": "101.2", "Diagnosis": "Viral Infection"},
    {"Headache": "No", "Body_Ache": "No", "Fatigue": "Yes", "Chills": "No", "Nausea": "No", "Dizziness": "No", "Cough": "Yes", "Sore_Throat": "Yes", "Runny_Nose": "Yes", "Muscle_Pain": "No", "Temperature": "99.8", "Diagnosis": "Common Cold"}
  ]
}`,
	corpus.RiskAssessmentFile: `{
  "risk_factors": [
    {"condition": "chest pain with sweating", "risk_level": 9, "weight": 3},
    {"condition": "persistent high fever", "risk_level": 7, "weight": 2},
    {"condition": "mild headache", "risk_level": 2, "weight": 1},
    {"condition": "occasional cough", "risk_level": 1, "weight": 1}
  ]
}`,
	corpus.TriageProtocolFile: `{
  "protocols": [
    {"conditions": ["chest_pain", "shortness_of_breath"], "priority": "immediate"},
    {"conditions": ["high_fever", "stiff_neck"], "priority": "emergency"},
    {"conditions": ["fever", "cough"], "priority": "urgent"},
    {"conditions": ["runny_nose"], "priority": "routine"}
  ]
}`,
	corpus.EmergencyMarkersFile: `{
  "emergency_symptoms": ["chest_pain", "shortness_of_breath"],
  "critical_symptoms": ["unconsciousness", "severe_bleeding"],
  "critical_combinations": [
    {"symptoms": ["high_fever", "stiff_neck"], "reason": "possible meningitis"},
    {"symptoms": ["chest_pain", "left_arm_pain"], "reason": "possible cardiac event"}
  ]
}`,
	corpus.ConsultationsFile: `{
  "conversations": [
    {"symptoms": ["fever", "headache"], "is_emergency": false, "patient_age": "34", "initial_complaint": "I've had a fever since yesterday"},
    {"symptoms": ["chest_pain", "shortness_of_breath"], "is_emergency": true, "patient_age": "58", "initial_complaint": "My chest hurts and I can't breathe"},
    {"symptoms": ["cough", "runny_nose"], "is_emergency": false, "patient_age": "25", "initial_complaint": "I think I caught a cold"}
  ]
}`,
}

// CreateCorpusDir writes the fixture corpus under dir in the production
// layout.
func CreateCorpusDir(dir string) error {
	for relPath, content := range corpusFixtures {
		path := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
