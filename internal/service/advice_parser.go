package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"teamzen/internal/domain"
)

// AdviceParser normaliza la salida del servicio de consejos externo.
// El modelo devuelve JSON con nombres de campo variables (summary/resumen,
// key_risks/keyRisks/risks, actions/acciones/recommendations), a veces
// envuelto en fences de markdown o con texto alrededor. Si nada es
// parseable, el caller cae al generador heuristico.
type AdviceParser struct{}

// Parse intenta extraer un Advice usable; ok=false manda al fallback.
func (AdviceParser) Parse(raw string) (domain.Advice, bool) {
	cleaned := cleanJSONResponse(raw)

	candidates := []string{}
	if obj := firstJSONObject(cleaned); obj != "" {
		candidates = append(candidates, obj)
	}
	if obj := firstJSONObject(raw); obj != "" {
		candidates = append(candidates, obj)
	}
	candidates = append(candidates, cleaned, raw)

	for _, candidate := range candidates {
		if advice, ok := tryParseAdvice(candidate); ok {
			return advice, true
		}
	}
	return domain.Advice{}, false
}

// looseAdvice acepta todas las variantes de nombres observadas.
type looseAdvice struct {
	Summary         string   `json:"summary"`
	Resumen         string   `json:"resumen"`
	KeyRisksSnake   []string `json:"key_risks"`
	KeyRisksCamel   []string `json:"keyRisks"`
	Risks           []string `json:"risks"`
	Riesgos         []string `json:"riesgos"`
	Actions         []string `json:"actions"`
	Acciones        []string `json:"acciones"`
	Recommendations []string `json:"recommendations"`
}

func tryParseAdvice(candidate string) (domain.Advice, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return domain.Advice{}, false
	}

	var loose looseAdvice
	if err := json.Unmarshal([]byte(candidate), &loose); err != nil {
		return domain.Advice{}, false
	}

	summary := strings.TrimSpace(firstNonEmpty(loose.Summary, loose.Resumen))
	risks := firstNonEmptyList(loose.KeyRisksSnake, loose.KeyRisksCamel, loose.Risks, loose.Riesgos)
	actions := firstNonEmptyList(loose.Actions, loose.Acciones, loose.Recommendations)

	// Sin resumen ni acciones no hay consejo util que mostrar.
	if summary == "" && len(actions) == 0 {
		return domain.Advice{}, false
	}

	return domain.Advice{
		Summary:  summary,
		KeyRisks: trimAll(risks),
		Actions:  trimAll(actions),
		Source:   domain.AdviceSourceAI,
	}, true
}

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanJSONResponse quita fences ```json ... ``` y BOM.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstJSONObject devuelve el primer objeto JSON balanceado del texto,
// respetando llaves dentro de strings.
func firstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyList(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
