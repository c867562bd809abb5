package service

import "buddy-mind/internal/domain"

// mbtiDescriptions mapea los 16 códigos a su etiqueta y descripción.
var mbtiDescriptions = map[string]string{
	"ENTJ": "The Commander - Natural born leader with strategic thinking",
	"ENTP": "The Debater - Quick-witted innovator of possibilities",
	"ENFJ": "The Protagonist - Charismatic and inspiring leader",
	"ENFP": "The Campaigner - Enthusiastic, creative and sociable free spirits",
	"ESTJ": "The Executive - Excellent administrator, managing things and people",
	"ESTP": "The Entrepreneur - Smart, energetic and highly perceptive",
	"ESFJ": "The Consul - Extraordinarily caring, social and popular",
	"ESFP": "The Entertainer - Spontaneous, energetic and enthusiastic",
	"INTJ": "The Architect - Imaginative and strategic thinker",
	"INTP": "The Thinker - Innovative inventor with unquenchable thirst for knowledge",
	"INFJ": "The Advocate - Creative and insightful, inspired and independent",
	"INFP": "The Mediator - Poetic, kind and altruistic, always eager to help",
	"ISTJ": "The Logistician - Practical and fact-minded, reliable and responsible",
	"ISTP": "The Virtuoso - Bold and practical experimenter, master of all tools",
	"ISFJ": "The Protector - Warm-hearted and dedicated, always ready to protect loved ones",
	"ISFP": "The Adventurer - Flexible and charming artist, always ready to explore new possibilities",
}

// MBTIType resuelve el código de cuatro letras. Cada eje decide solo:
// score > 0.5 elige el polo alto (E/S/T/J); el empate en 0.5 cae en el
// polo bajo (I/N/F/P) por convención.
func MBTIType(scores [domain.DimensionCount]float64) string {
	code := make([]byte, 0, domain.DimensionCount)
	for _, d := range domain.Dimensions {
		high, low := d.Poles()
		if scores[d] > 0.5 {
			code = append(code, high)
		} else {
			code = append(code, low)
		}
	}
	return string(code)
}

// MBTIDescription devuelve la descripción del tipo; un código fuera de
// los 16 conocidos cae al fallback.
func MBTIDescription(code string) string {
	if desc, ok := mbtiDescriptions[code]; ok {
		return desc
	}
	return "Unknown personality type"
}

// FacetBar representa un eje para visualización, con sus polos nombrados.
type FacetBar struct {
	Dimension  string  `json:"dimension"`
	LeftLabel  string  `json:"left_label"`
	RightLabel string  `json:"right_label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

var facetLabels = [domain.DimensionCount]struct {
	name  string
	left  string
	right string
}{
	domain.DimExtroversion: {"Energy", "Introversion", "Extraversion"},
	domain.DimSensing:      {"Information", "Intuition", "Sensing"},
	domain.DimThinking:     {"Decisions", "Feeling", "Thinking"},
	domain.DimJudging:      {"Structure", "Perceiving", "Judging"},
}

// FacetBars arma las barras de facetas a partir del perfil.
func FacetBars(p domain.PersonalityProfile) []FacetBar {
	bars := make([]FacetBar, 0, domain.DimensionCount)
	for _, d := range domain.Dimensions {
		labels := facetLabels[d]
		bars = append(bars, FacetBar{
			Dimension:  labels.name,
			LeftLabel:  labels.left,
			RightLabel: labels.right,
			Score:      p.Scores[d],
			Confidence: p.Confidences[d],
		})
	}
	return bars
}
