package corpus

import (
	"sort"
	"strconv"
	"strings"

	"github.com/curalab/triage/pkg/models"
)

// Corpus is the normalized training corpus: one flat record list plus the
// symptom and disease vocabularies for the similarity indices.
type Corpus struct {
	Records  []models.TrainingRecord
	Symptoms []string
	Diseases []string
}

// Load reads all corpus documents under dataDir and normalizes them into
// TrainingRecords via the per-schema adapters. Unknown or malformed rows
// are dropped with a warning; Load itself only fails when nothing at all
// could be read.
func Load(dataDir string) (*Corpus, error) {
	docs := LoadDocuments(dataDir)
	return FromDocuments(docs)
}

// FromDocuments runs every adapter over already-parsed documents.
func FromDocuments(docs *Documents) (*Corpus, error) {
	var records []models.TrainingRecord
	records = append(records, adaptSymptomDisease(&docs.SymptomDisease)...)
	records = append(records, adaptFeverCases(&docs.FeverDataset)...)
	records = append(records, adaptSeverityWeights(&docs.SymptomSeverity)...)
	records = append(records, adaptRiskFactors(&docs.RiskAssessment)...)
	records = append(records, adaptTriageProtocols(&docs.TriageProtocol)...)
	records = append(records, adaptEmergencyMarkers(&docs.EmergencyMarkers)...)
	records = append(records, adaptConsultations(&docs.Consultations)...)

	records = dedupe(records)

	c := &Corpus{Records: records}
	c.buildVocabulary(docs)

	if len(records) == 0 {
		return c, models.NewDataError(models.TargetDisease)
	}
	return c, nil
}

// TargetRecords filters records carrying the label the given target needs.
// Returns a DataError when the filtered set is empty: training cannot
// proceed on zero examples.
func (c *Corpus) TargetRecords(target models.Target) ([]models.TrainingRecord, error) {
	var out []models.TrainingRecord
	for i := range c.Records {
		if c.Records[i].HasLabel(target) {
			out = append(out, c.Records[i])
		}
	}
	if len(out) == 0 {
		return nil, models.NewDataError(target)
	}
	return out, nil
}

func (c *Corpus) buildVocabulary(docs *Documents) {
	symptoms := make(map[string]struct{})
	diseases := make(map[string]struct{})

	for _, e := range docs.SymptomDisease.Entries {
		for _, s := range e.Symptoms {
			if tok := models.NormalizeToken(s); tok != "" {
				symptoms[tok] = struct{}{}
			}
		}
		if d := models.NormalizeToken(e.Disease); d != "" {
			diseases[d] = struct{}{}
		}
	}
	for _, e := range docs.SymptomSeverity.Entries {
		if tok := models.NormalizeToken(e.Symptom); tok != "" {
			symptoms[tok] = struct{}{}
		}
	}

	c.Symptoms = sortedKeys(symptoms)
	c.Diseases = sortedKeys(diseases)
}

// adaptSymptomDisease maps the symptom→disease dataset: one disease-labeled
// record per entry.
func adaptSymptomDisease(doc *SymptomDiseaseDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	for i, e := range doc.Entries {
		symptoms := models.NormalizeSymptoms(e.Symptoms)
		disease := models.NormalizeToken(e.Disease)
		if len(symptoms) == 0 || disease == "" {
			log.Warnf("symptom_disease entry %d dropped: missing symptoms or disease", i)
			continue
		}
		out = append(out, models.TrainingRecord{
			Symptoms: symptoms,
			Source:   models.SourceSymptomDisease,
			Disease:  disease,
		})
	}
	return out
}

// feverSymptomColumns maps the dataset's Yes/No columns to symptom tokens.
var feverSymptomColumns = []struct {
	value func(*FeverCase) string
	token string
}{
	{func(c *FeverCase) string { return c.Headache }, "headache"},
	{func(c *FeverCase) string { return c.BodyAche }, "body_ache"},
	{func(c *FeverCase) string { return c.Fatigue }, "fatigue"},
	{func(c *FeverCase) string { return c.Chills }, "chills"},
	{func(c *FeverCase) string { return c.Nausea }, "nausea"},
	{func(c *FeverCase) string { return c.Dizziness }, "dizziness"},
	{func(c *FeverCase) string { return c.Cough }, "cough"},
	{func(c *FeverCase) string { return c.SoreThroat }, "sore_throat"},
	{func(c *FeverCase) string { return c.RunnyNose }, "runny_nose"},
	{func(c *FeverCase) string { return c.MusclePain }, "muscle_pain"},
}

// adaptFeverCases flattens fever case rows: Yes columns become symptom
// tokens and the temperature is bucketed into a fever-severity token.
func adaptFeverCases(doc *FeverDatasetDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	for i := range doc.Cases {
		c := &doc.Cases[i]
		var symptoms []string
		for _, col := range feverSymptomColumns {
			if strings.EqualFold(strings.TrimSpace(col.value(c)), "yes") {
				symptoms = append(symptoms, col.token)
			}
		}
		if c.Temperature != "" {
			temp, err := strconv.ParseFloat(strings.TrimSpace(c.Temperature), 64)
			if err != nil {
				log.Warnf("fever case %d: unparseable temperature %q", i, c.Temperature)
			} else {
				symptoms = append(symptoms, feverBucket(temp))
			}
		}
		symptoms = models.NormalizeSymptoms(symptoms)
		if len(symptoms) == 0 {
			log.Warnf("fever case %d dropped: no symptoms", i)
			continue
		}
		disease := models.NormalizeToken(c.Diagnosis)
		if disease == "" {
			disease = "unknown_fever"
		}
		out = append(out, models.TrainingRecord{
			Symptoms: symptoms,
			Source:   models.SourceFeverCases,
			Disease:  disease,
		})
	}
	return out
}

// feverBucket classifies a Fahrenheit temperature into a severity token.
func feverBucket(tempF float64) string {
	switch {
	case tempF >= 103:
		return "high_fever"
	case tempF >= 101:
		return "moderate_fever"
	default:
		return "mild_fever"
	}
}

// adaptSeverityWeights maps the severity weight table: one severity-labeled
// record per symptom.
func adaptSeverityWeights(doc *SymptomSeverityDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	for i, e := range doc.Entries {
		tok := models.NormalizeToken(e.Symptom)
		if tok == "" {
			log.Warnf("symptom_severity entry %d dropped: empty symptom", i)
			continue
		}
		if e.SeverityWeight < 1 || e.SeverityWeight > 10 {
			log.Warnf("symptom_severity entry %d dropped: weight %d out of range", i, e.SeverityWeight)
			continue
		}
		out = append(out, models.TrainingRecord{
			Symptoms: []string{tok},
			Source:   models.SourceSeverityWeights,
			Severity: e.SeverityWeight,
		})
	}
	return out
}

// adaptRiskFactors turns risk conditions into severity records; levels of
// 6 and above additionally count as emergency positives.
func adaptRiskFactors(doc *RiskAssessmentDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	for i, rf := range doc.RiskFactors {
		tokens := conditionTokens(rf.Condition)
		if len(tokens) == 0 {
			log.Warnf("risk factor %d dropped: empty condition", i)
			continue
		}
		if rf.RiskLevel < 1 || rf.RiskLevel > 10 {
			log.Warnf("risk factor %d dropped: risk level %d out of range", i, rf.RiskLevel)
			continue
		}
		emergency := rf.RiskLevel >= 6
		out = append(out, models.TrainingRecord{
			Symptoms:  tokens,
			Source:    models.SourceRiskAssessment,
			Severity:  rf.RiskLevel,
			Emergency: &emergency,
		})
	}
	return out
}

// adaptTriageProtocols labels protocol condition sets as emergency when the
// priority class is immediate or emergency.
func adaptTriageProtocols(doc *TriageProtocolDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	for i, p := range doc.Protocols {
		symptoms := models.NormalizeSymptoms(p.Conditions)
		if len(symptoms) == 0 {
			log.Warnf("triage protocol %d dropped: no conditions", i)
			continue
		}
		priority := strings.ToLower(strings.TrimSpace(p.Priority))
		emergency := priority == "immediate" || priority == "emergency"
		out = append(out, models.TrainingRecord{
			Symptoms:  symptoms,
			Source:    models.SourceTriageProtocol,
			Emergency: &emergency,
		})
	}
	return out
}

// adaptEmergencyMarkers emits one emergency-positive record per marker.
func adaptEmergencyMarkers(doc *EmergencyMarkersDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	emergency := true
	for _, s := range doc.EmergencySymptoms {
		tok := models.NormalizeToken(s)
		if tok == "" {
			continue
		}
		out = append(out, models.TrainingRecord{
			Symptoms:  []string{tok},
			Source:    models.SourceEmergencyMarkers,
			Emergency: &emergency,
		})
	}
	return out
}

// adaptConsultations labels sample consultations with their recorded
// emergency outcome.
func adaptConsultations(doc *ConsultationsDoc) []models.TrainingRecord {
	var out []models.TrainingRecord
	for i, c := range doc.Conversations {
		symptoms := models.NormalizeSymptoms(c.Symptoms)
		if len(symptoms) == 0 {
			log.Warnf("consultation %d dropped: no symptoms", i)
			continue
		}
		emergency := c.IsEmergency
		out = append(out, models.TrainingRecord{
			Symptoms:  symptoms,
			Source:    models.SourceConsultations,
			Emergency: &emergency,
		})
	}
	return out
}

// conditionTokens normalizes a free-text condition ("persistent high fever
// over 72 hours") into word tokens.
func conditionTokens(condition string) []string {
	return models.NormalizeSymptoms(strings.Fields(strings.ToLower(condition)))
}

// dedupe drops records identical in symptom set, source-independent labels.
func dedupe(records []models.TrainingRecord) []models.TrainingRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		key := recordKey(&r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func recordKey(r *models.TrainingRecord) string {
	var b strings.Builder
	b.WriteString(strings.Join(r.Symptoms, "|"))
	b.WriteString("#")
	b.WriteString(r.Disease)
	b.WriteString("#")
	b.WriteString(strconv.Itoa(r.Severity))
	b.WriteString("#")
	if r.Emergency != nil {
		b.WriteString(strconv.FormatBool(*r.Emergency))
	}
	return b.String()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
