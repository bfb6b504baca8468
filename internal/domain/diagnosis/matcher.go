// Package diagnosis implements the rule-based symptom matching engine that
// powers the chat bot. A Matcher is built once from the disease corpus and is
// immutable afterwards, so it can be shared freely across request handlers;
// corpus reloads are handled by building a new Matcher and swapping it in.
package diagnosis

import (
	"math"
	"sort"
	"strings"

	"github.com/medibot/medibot/internal/domain/disease"
)

// matchThreshold is the minimum score a disease needs to be reported as a
// diagnosis. Anything below it is treated as "no confident match".
const matchThreshold = 0.3

// Result is a scored diagnosis. Score is in [0, 1] and is not persisted.
type Result struct {
	Disease *disease.Disease `json:"disease"`
	Score   float64          `json:"score"`
}

// Matcher matches accumulated symptom lists against the disease corpus.
type Matcher struct {
	corpus   []*disease.Disease
	keywords map[string]struct{}
	// ordered holds the vocabulary sorted lexicographically. Keyword scans
	// walk this slice instead of the map so extraction is deterministic.
	ordered []string
}

// vocabularySynonyms are colloquial terms added verbatim to the keyword
// vocabulary on top of the corpus-derived symptoms.
var vocabularySynonyms = []string{
	"temperature", "runny nose", "stuffy nose", "stomach ache", "tummy ache",
	"belly ache", "sick", "throwing up", "sneezing", "coughing", "tired",
	"exhausted", "drowsy",
}

// phrasePatterns maps canonical symptom names to colloquial trigger phrases.
// Order matters: entries are scanned top to bottom.
var phrasePatterns = []struct {
	symptom  string
	triggers []string
}{
	{"fever", []string{"hot", "temperature", "feverish", "burning up"}},
	{"headache", []string{"head hurts", "head pain", "migraine"}},
	{"stomach pain", []string{"stomach hurts", "belly pain", "tummy pain", "stomach ache"}},
	{"sore throat", []string{"throat hurts", "painful throat", "throat pain"}},
	{"cough", []string{"coughing", "hacking"}},
	{"nausea", []string{"feel sick", "queasy", "sick to stomach"}},
	{"fatigue", []string{"tired", "exhausted", "weak", "no energy"}},
	{"runny nose", []string{"stuffy nose", "blocked nose", "congested"}},
	{"sneezing", []string{"sneezing", "achoo"}},
	{"chills", []string{"cold", "shivering", "shaking"}},
}

// synonymGroups drives partial-match scoring. A symptom pair scores 0.5 when
// one side is the canonical term and the other is in its synonym list, or
// when both sides share a synonym list. The first group that matches a pair
// wins; later groups are not consulted for that pair.
var synonymGroups = []struct {
	canonical string
	synonyms  []string
}{
	{"fever", []string{"temperature", "hot", "feverish"}},
	{"headache", []string{"head pain", "migraine"}},
	{"stomach pain", []string{"stomach ache", "belly pain", "abdominal pain"}},
	{"sore throat", []string{"throat pain", "painful throat"}},
	{"runny nose", []string{"nasal congestion", "stuffy nose"}},
	{"fatigue", []string{"tired", "exhausted", "weakness"}},
	{"nausea", []string{"sick", "queasy"}},
	{"chills", []string{"cold", "shivering"}},
}

// NewMatcher builds a Matcher from the disease corpus. The corpus slice is
// retained as-is and must not be mutated while the Matcher is in use.
func NewMatcher(corpus []*disease.Disease) *Matcher {
	m := &Matcher{
		corpus:   corpus,
		keywords: make(map[string]struct{}),
	}

	for _, d := range corpus {
		for _, symptom := range d.Symptoms {
			kw := strings.ToLower(symptom)
			m.addKeyword(kw)
			// ache/pain interchangeability: "stomach ache" also
			// registers "stomach pain" and vice versa.
			if strings.Contains(kw, "ache") {
				m.addKeyword(strings.ReplaceAll(kw, "ache", "pain"))
			}
			if strings.Contains(kw, "pain") {
				m.addKeyword(strings.ReplaceAll(kw, "pain", "ache"))
			}
		}
	}
	for _, syn := range vocabularySynonyms {
		m.addKeyword(syn)
	}

	m.ordered = make([]string, 0, len(m.keywords))
	for kw := range m.keywords {
		m.ordered = append(m.ordered, kw)
	}
	sort.Strings(m.ordered)

	return m
}

func (m *Matcher) addKeyword(kw string) {
	m.keywords[kw] = struct{}{}
}

// ExtractSymptoms returns the symptom tokens detected in a free-text message,
// in order of discovery. It never fails; text with no recognizable symptoms
// yields an empty list.
//
// Keyword hits and phrase-pattern hits are concatenated without
// cross-deduplication: only the phrase-pattern pass checks membership in the
// accumulating list. Callers that accumulate symptoms across messages are
// expected to deduplicate on insert.
func (m *Matcher) ExtractSymptoms(text string) []string {
	msg := strings.ToLower(text)
	var detected []string

	for _, kw := range m.ordered {
		if strings.Contains(msg, kw) {
			detected = append(detected, kw)
		}
	}

	for _, p := range phrasePatterns {
		for _, trigger := range p.triggers {
			if strings.Contains(msg, trigger) && !containsString(detected, p.symptom) {
				detected = append(detected, p.symptom)
			}
		}
	}

	return detected
}

// Match scores every disease in the corpus against the accumulated symptom
// list and returns the best match, or nil when the list is empty or no
// disease reaches the confidence threshold. Ties keep the first disease
// encountered (strictly-greater comparison).
func (m *Matcher) Match(symptoms []string) *Result {
	if len(symptoms) == 0 {
		return nil
	}

	var best *disease.Disease
	bestScore := 0.0

	for _, d := range m.corpus {
		score := matchScore(symptoms, d.Symptoms)
		if score > bestScore {
			bestScore = score
			best = d
		}
	}

	if best == nil || bestScore < matchThreshold {
		return nil
	}
	return &Result{Disease: best, Score: bestScore}
}

// GetDiseaseInfo looks up a disease by name, case-insensitively. Returns nil
// when the name is unknown.
func (m *Matcher) GetDiseaseInfo(name string) *disease.Disease {
	for _, d := range m.corpus {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// matchScore computes the similarity between an accumulated symptom list and
// a disease's symptom list. Exact (case-insensitive) matches count 1.0 each,
// synonym-mediated partial matches count 0.5, the total gets a 1.2 boost when
// there are at least two exact matches, and the result is normalized by the
// longer of the two lists and clamped to 1.0.
func matchScore(userSymptoms, diseaseSymptoms []string) float64 {
	if len(userSymptoms) == 0 || len(diseaseSymptoms) == 0 {
		return 0
	}

	user := lowerAll(userSymptoms)
	dis := lowerAll(diseaseSymptoms)

	exact := 0
	for _, u := range user {
		if containsString(dis, u) {
			exact++
		}
	}

	partial := 0.0
	for _, u := range user {
		for _, ds := range dis {
			if u == ds {
				continue
			}
			for _, g := range synonymGroups {
				if (u == g.canonical && containsString(g.synonyms, ds)) ||
					(ds == g.canonical && containsString(g.synonyms, u)) ||
					(containsString(g.synonyms, u) && containsString(g.synonyms, ds)) {
					partial += 0.5
					break
				}
			}
		}
	}

	total := float64(exact) + partial
	if exact >= 2 {
		total *= 1.2
	}

	maxPossible := len(user)
	if len(dis) > maxPossible {
		maxPossible = len(dis)
	}

	return math.Min(total/float64(maxPossible), 1.0)
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
