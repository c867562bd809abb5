package domain

// Dimension identifica uno de los cuatro ejes MBTI.
// Se usa indexación fija en lugar de mapas por string para evitar typos
// en las claves y permitir chequeos de exhaustividad.
type Dimension int

const (
	DimExtroversion Dimension = iota
	DimSensing
	DimThinking
	DimJudging

	// DimensionCount es el tamaño de los arrays indexados por Dimension.
	DimensionCount
)

// Dimensions lista los ejes en orden canónico para iterar.
var Dimensions = [DimensionCount]Dimension{DimExtroversion, DimSensing, DimThinking, DimJudging}

func (d Dimension) String() string {
	switch d {
	case DimExtroversion:
		return "extroversion"
	case DimSensing:
		return "sensing"
	case DimThinking:
		return "thinking"
	case DimJudging:
		return "judging"
	}
	return "unknown"
}

// Poles devuelve las letras MBTI del eje: la primera cuando score > 0.5,
// la segunda cuando score <= 0.5 (el empate cae del lado introspectivo).
func (d Dimension) Poles() (high, low byte) {
	switch d {
	case DimExtroversion:
		return 'E', 'I'
	case DimSensing:
		return 'S', 'N'
	case DimThinking:
		return 'T', 'F'
	case DimJudging:
		return 'J', 'P'
	}
	return '?', '?'
}
