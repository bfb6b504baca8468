package diagnosis

import (
	"reflect"
	"testing"

	"github.com/medibot/medibot/internal/domain/disease"
)

func testCorpus() []*disease.Disease {
	return []*disease.Disease{
		{
			Name:      "Common Cold",
			Symptoms:  []string{"cough", "runny nose", "sore throat"},
			Medicines: []disease.Medicine{{Name: "Paracetamol"}},
		},
		{
			Name:     "Fever",
			Symptoms: []string{"fever", "headache"},
		},
		{
			Name:     "Stomach Upset",
			Symptoms: []string{"stomach ache", "nausea", "vomiting", "diarrhea", "cramps"},
		},
	}
}

func TestExtractSymptoms_Deterministic(t *testing.T) {
	m := NewMatcher(testCorpus())
	text := "I have a fever, a headache and I keep coughing"

	first := m.ExtractSymptoms(text)
	for i := 0; i < 10; i++ {
		got := m.ExtractSymptoms(text)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction not deterministic: run %d got %v, want %v", i, got, first)
		}
	}
}

func TestExtractSymptoms_EmptyText(t *testing.T) {
	m := NewMatcher(testCorpus())
	if got := m.ExtractSymptoms(""); len(got) != 0 {
		t.Errorf("expected empty result for empty text, got %v", got)
	}
	if got := m.ExtractSymptoms("hello, how are you?"); len(got) != 0 {
		t.Errorf("expected empty result for symptom-free text, got %v", got)
	}
}

func TestExtractSymptoms_Scenario(t *testing.T) {
	m := NewMatcher([]*disease.Disease{{
		Name:      "Common Cold",
		Symptoms:  []string{"cough", "runny nose", "sore throat"},
		Medicines: []disease.Medicine{{Name: "Paracetamol"}},
	}})

	got := m.ExtractSymptoms("I have a runny nose and sore throat")
	want := []string{"runny nose", "sore throat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	res := m.Match(got)
	if res == nil {
		t.Fatal("expected a match")
	}
	if res.Disease.Name != "Common Cold" {
		t.Errorf("expected Common Cold, got %s", res.Disease.Name)
	}
	// Two exact matches trigger the 1.2 boost: 2*1.2/3 = 0.8.
	if res.Score < 0.79 || res.Score > 0.81 {
		t.Errorf("expected score 0.8, got %f", res.Score)
	}
}

func TestExtractSymptoms_AchePainVariants(t *testing.T) {
	m := NewMatcher([]*disease.Disease{{
		Name:     "Stomach Upset",
		Symptoms: []string{"stomach ache"},
	}})

	got := m.ExtractSymptoms("my stomach pain is terrible")
	if !containsString(got, "stomach pain") {
		t.Errorf("expected 'stomach pain' variant to be recognized, got %v", got)
	}
}

func TestExtractSymptoms_PhrasePatterns(t *testing.T) {
	m := NewMatcher(testCorpus())

	got := m.ExtractSymptoms("my head hurts and I have no energy")
	if !containsString(got, "headache") {
		t.Errorf("expected 'headache' from phrase pattern, got %v", got)
	}
	if !containsString(got, "fatigue") {
		t.Errorf("expected 'fatigue' from phrase pattern, got %v", got)
	}
}

func TestExtractSymptoms_KeywordAndPatternNotCrossDeduplicated(t *testing.T) {
	// "tired" is a vocabulary keyword and also a trigger for "fatigue";
	// the keyword hit does not suppress the canonical pattern hit.
	m := NewMatcher(testCorpus())

	got := m.ExtractSymptoms("I am so tired")
	if !containsString(got, "tired") {
		t.Errorf("expected keyword hit 'tired', got %v", got)
	}
	if !containsString(got, "fatigue") {
		t.Errorf("expected pattern hit 'fatigue', got %v", got)
	}
}

func TestMatch_ExactBoostClamped(t *testing.T) {
	m := NewMatcher(testCorpus())

	res := m.Match([]string{"headache", "fever"})
	if res == nil {
		t.Fatal("expected a match")
	}
	if res.Disease.Name != "Fever" {
		t.Errorf("expected Fever, got %s", res.Disease.Name)
	}
	// 2 exact * 1.2 / max(2,2) = 1.2, clamped to 1.0.
	if res.Score != 1.0 {
		t.Errorf("expected score 1.0, got %f", res.Score)
	}
}

func TestMatch_ThresholdBoundary(t *testing.T) {
	third := []*disease.Disease{{Name: "Three", Symptoms: []string{"a", "b", "c"}}}
	fifth := []*disease.Disease{{Name: "Five", Symptoms: []string{"a", "b", "c", "d", "e"}}}

	// One of three symptoms: 1/3 ≈ 0.33, above the 0.3 threshold.
	if res := NewMatcher(third).Match([]string{"a"}); res == nil {
		t.Error("expected 1/3 score to be accepted")
	}
	// One of five symptoms: 0.2, below the threshold.
	if res := NewMatcher(fifth).Match([]string{"a"}); res != nil {
		t.Errorf("expected 0.2 score to be rejected, got %+v", res)
	}
}

func TestMatch_EmptySymptoms(t *testing.T) {
	m := NewMatcher(testCorpus())
	if res := m.Match(nil); res != nil {
		t.Errorf("expected no match for empty symptom list, got %+v", res)
	}
	if res := m.Match([]string{}); res != nil {
		t.Errorf("expected no match for empty symptom list, got %+v", res)
	}
}

func TestMatch_TieKeepsFirst(t *testing.T) {
	corpus := []*disease.Disease{
		{Name: "First", Symptoms: []string{"a", "b"}},
		{Name: "Second", Symptoms: []string{"a", "b"}},
	}
	res := NewMatcher(corpus).Match([]string{"a", "b"})
	if res == nil {
		t.Fatal("expected a match")
	}
	if res.Disease.Name != "First" {
		t.Errorf("tie should keep the first disease, got %s", res.Disease.Name)
	}
}

func TestMatchScore_SynonymSymmetry(t *testing.T) {
	forward := matchScore([]string{"temperature"}, []string{"fever"})
	backward := matchScore([]string{"fever"}, []string{"temperature"})
	if forward != backward {
		t.Errorf("synonym scoring not symmetric: %f vs %f", forward, backward)
	}
	if forward != 0.5 {
		t.Errorf("expected partial-match score 0.5, got %f", forward)
	}
}

func TestMatchScore_SharedSynonymList(t *testing.T) {
	// "tired" and "exhausted" both live in the fatigue synonym list.
	got := matchScore([]string{"tired"}, []string{"exhausted"})
	if got != 0.5 {
		t.Errorf("expected 0.5 for symptoms sharing a synonym list, got %f", got)
	}
}

func TestMatchScore_EmptyInputs(t *testing.T) {
	if got := matchScore(nil, []string{"fever"}); got != 0 {
		t.Errorf("expected 0 for empty user symptoms, got %f", got)
	}
	if got := matchScore([]string{"fever"}, nil); got != 0 {
		t.Errorf("expected 0 for empty disease symptoms, got %f", got)
	}
}

func TestGetDiseaseInfo_CaseInsensitive(t *testing.T) {
	m := NewMatcher(testCorpus())

	upper := m.GetDiseaseInfo("Common Cold")
	lower := m.GetDiseaseInfo("common cold")
	if upper == nil || lower == nil {
		t.Fatal("expected disease to be found under both spellings")
	}
	if upper != lower {
		t.Error("expected both lookups to return the same record")
	}
	if m.GetDiseaseInfo("no such disease") != nil {
		t.Error("expected nil for unknown disease")
	}
}

func TestNewMatcher_EmptyCorpus(t *testing.T) {
	m := NewMatcher(nil)
	// Fixed synonyms are still recognizable.
	got := m.ExtractSymptoms("I have a temperature")
	if !containsString(got, "temperature") {
		t.Errorf("expected fixed synonym 'temperature' in vocabulary, got %v", got)
	}
	if res := m.Match([]string{"fever"}); res != nil {
		t.Errorf("expected no match against empty corpus, got %+v", res)
	}
}

func TestAdvice(t *testing.T) {
	if got := Advice("Common Cold"); got == defaultAdvice {
		t.Error("expected dedicated advice for Common Cold")
	}
	if got := Advice("Rare Disease"); got != defaultAdvice {
		t.Errorf("expected default advice for unknown disease, got %q", got)
	}
}
