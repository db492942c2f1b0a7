// Package kb implements the rule-based medical knowledge base: disease
// lookup by symptom overlap, severity weights, emergency markers,
// precautions and triage protocols. The decision engine uses it as the
// fallback signal when a classifier artifact is absent; response
// generation uses it for precaution text.
package kb

import (
	"fmt"
	"sort"

	"github.com/curalab/triage/internal"
	"github.com/curalab/triage/pkg/corpus"
	"github.com/curalab/triage/pkg/models"
)

var log = internal.GetLogger()

// triagePriorities orders protocol priorities from most to least urgent.
var triagePriorities = []string{"immediate", "emergency", "urgent", "routine"}

type protocol struct {
	conditions []string
	priority   string
}

type KB struct {
	diseaseSymptoms    map[string]map[string]struct{}
	severityWeights    map[string]int
	criticalSymptoms   map[string]struct{}
	combinations       []corpus.CriticalCombination
	symptomPrecautions map[string][]string
	diseasePrecautions map[string][]string
	descriptions       map[string]string
	protocols          []protocol
}

var _ models.KnowledgeBase = &KB{}

// Load reads the corpus documents under dataDir and builds the rule tables.
func Load(dataDir string) *KB {
	return New(corpus.LoadDocuments(dataDir))
}

// New builds the rule tables from already-parsed documents.
func New(docs *corpus.Documents) *KB {
	k := &KB{
		diseaseSymptoms:    make(map[string]map[string]struct{}),
		severityWeights:    make(map[string]int),
		criticalSymptoms:   make(map[string]struct{}),
		symptomPrecautions: make(map[string][]string),
		diseasePrecautions: make(map[string][]string),
		descriptions:       make(map[string]string),
	}

	for _, e := range docs.SymptomDisease.Entries {
		disease := models.NormalizeToken(e.Disease)
		if disease == "" {
			continue
		}
		set, ok := k.diseaseSymptoms[disease]
		if !ok {
			set = make(map[string]struct{})
			k.diseaseSymptoms[disease] = set
		}
		for _, s := range e.Symptoms {
			if tok := models.NormalizeToken(s); tok != "" {
				set[tok] = struct{}{}
			}
		}
	}

	for _, e := range docs.SymptomSeverity.Entries {
		tok := models.NormalizeToken(e.Symptom)
		if tok == "" || e.SeverityWeight < 1 || e.SeverityWeight > 10 {
			continue
		}
		k.severityWeights[tok] = e.SeverityWeight
	}

	for _, s := range docs.EmergencyMarkers.EmergencySymptoms {
		if tok := models.NormalizeToken(s); tok != "" {
			k.criticalSymptoms[tok] = struct{}{}
		}
	}
	for _, s := range docs.EmergencyMarkers.CriticalSymptoms {
		if tok := models.NormalizeToken(s); tok != "" {
			k.criticalSymptoms[tok] = struct{}{}
		}
	}
	for _, combo := range docs.EmergencyMarkers.CriticalCombinations {
		normalized := corpus.CriticalCombination{
			Symptoms: models.NormalizeSymptoms(combo.Symptoms),
			Reason:   combo.Reason,
		}
		if len(normalized.Symptoms) == 0 {
			continue
		}
		k.combinations = append(k.combinations, normalized)
	}

	for _, e := range docs.Descriptions.Symptoms {
		if tok := models.NormalizeToken(e.Name); tok != "" && e.Description != "" {
			k.descriptions[tok] = e.Description
		}
	}

	for _, e := range docs.Precautions.SymptomPrecautions {
		if tok := models.NormalizeToken(e.Symptom); tok != "" {
			k.symptomPrecautions[tok] = e.Precautions
		}
	}
	for _, e := range docs.Precautions.DiseasePrecautions {
		if tok := models.NormalizeToken(e.Disease); tok != "" {
			k.diseasePrecautions[tok] = e.Precautions
		}
	}

	for _, p := range docs.TriageProtocol.Protocols {
		conditions := models.NormalizeSymptoms(p.Conditions)
		if len(conditions) == 0 {
			continue
		}
		k.protocols = append(k.protocols, protocol{
			conditions: conditions,
			priority:   models.NormalizeToken(p.Priority),
		})
	}

	log.Debugf(
		"knowledge base loaded: %d diseases, %d severity weights, %d critical symptoms",
		len(k.diseaseSymptoms), len(k.severityWeights), len(k.criticalSymptoms),
	)
	return k
}

// DiseasesForSymptoms scores each known disease by the number of matching
// symptoms, normalized by the best match into [0,1]. Best first; equal
// scores in lexical disease order.
func (k *KB) DiseasesForSymptoms(symptoms []string) []models.DiseaseScore {
	tokens := models.NormalizeSymptoms(symptoms)
	counts := make(map[string]int)
	for disease, set := range k.diseaseSymptoms {
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				counts[disease]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	scores := make([]models.DiseaseScore, 0, len(counts))
	for disease, c := range counts {
		scores = append(scores, models.DiseaseScore{
			Disease: disease,
			Score:   float64(c) / float64(max),
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Disease < scores[j].Disease
	})
	return scores
}

// SeverityEstimate averages the severity weights of the known symptoms,
// rounded and clamped to [1,10]. The boolean is false when none of the
// symptoms have a weight.
func (k *KB) SeverityEstimate(symptoms []string) (int, bool) {
	tokens := models.NormalizeSymptoms(symptoms)
	total, known := 0, 0
	for _, tok := range tokens {
		if w, ok := k.severityWeights[tok]; ok {
			total += w
			known++
		}
	}
	if known == 0 {
		return 0, false
	}
	avg := (total + known/2) / known
	return models.ClampSeverity(avg), true
}

// EmergencyEstimate flags critical symptoms and fully-present critical
// combinations. The boolean is false when the knowledge base carries no
// marker data at all.
func (k *KB) EmergencyEstimate(symptoms []string) (models.EmergencyEstimate, bool) {
	if len(k.criticalSymptoms) == 0 && len(k.combinations) == 0 {
		return models.EmergencyEstimate{}, false
	}

	tokens := models.NormalizeSymptoms(symptoms)
	present := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}

	var est models.EmergencyEstimate
	for _, tok := range tokens {
		if _, ok := k.criticalSymptoms[tok]; ok {
			est.Emergency = true
			est.Reasons = append(est.Reasons, fmt.Sprintf("critical symptom: %s", tok))
		}
	}
	for _, combo := range k.combinations {
		all := true
		for _, s := range combo.Symptoms {
			if _, ok := present[s]; !ok {
				all = false
				break
			}
		}
		if all {
			est.Emergency = true
			est.Reasons = append(est.Reasons, combo.Reason)
		}
	}
	return est, true
}

// Precautions returns precaution text for a symptom or disease key.
func (k *KB) Precautions(key string) []string {
	tok := models.NormalizeToken(key)
	if p, ok := k.symptomPrecautions[tok]; ok {
		return p
	}
	return k.diseasePrecautions[tok]
}

// Description returns the free-text description of a symptom.
func (k *KB) Description(symptom string) string {
	return k.descriptions[models.NormalizeToken(symptom)]
}

// TriageLevel returns the most urgent priority among protocols whose
// conditions are all present in the symptom set, or "" when none match.
func (k *KB) TriageLevel(symptoms []string) string {
	tokens := models.NormalizeSymptoms(symptoms)
	present := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}

	matched := make(map[string]bool)
	for _, p := range k.protocols {
		all := true
		for _, c := range p.conditions {
			if _, ok := present[c]; !ok {
				all = false
				break
			}
		}
		if all {
			matched[p.priority] = true
		}
	}
	for _, priority := range triagePriorities {
		if matched[priority] {
			return priority
		}
	}
	return ""
}
