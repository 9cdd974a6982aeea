package service

import (
	"fmt"
	"math/rand"
	"strings"

	"teamzen/internal/domain"
	"teamzen/internal/mbi"
)

// HeuristicAdviceGenerator produce consejos con una tabla fija de acciones
// por subescala y categoria. Es el fallback obligatorio cuando el servicio
// de IA externo no responde, tarda o devuelve basura; su salida tiene la
// misma forma que la del servicio externo.
type HeuristicAdviceGenerator struct{}

// Tabla fija de acciones candidatas por subescala y categoria.
var heuristicActions = map[string]map[string][]string{
	mbi.SubscaleAE: {
		mbi.CategoryBajo: {
			"Mantener las pausas activas durante la jornada",
			"Conservar los limites actuales entre trabajo y descanso",
		},
		mbi.CategoryMedio: {
			"Revisar la distribucion de carga en las proximas semanas",
			"Agendar bloques sin reuniones para trabajo profundo",
			"Conversar 1:1 sobre la carga percibida",
		},
		mbi.CategoryAlto: {
			"Reducir la carga operativa de forma inmediata",
			"Priorizar y posponer entregas no criticas",
			"Habilitar dias de descanso compensatorio",
			"Revisar plazos con el equipo antes de comprometer nuevos",
		},
	},
	mbi.SubscaleD: {
		mbi.CategoryBajo: {
			"Sostener los espacios informales del equipo",
			"Reconocer publicamente las contribuciones recientes",
		},
		mbi.CategoryMedio: {
			"Abrir una retro centrada en la relacion con el trabajo",
			"Rotar tareas repetitivas entre el equipo",
			"Fomentar pares de trabajo para tareas aisladas",
		},
		mbi.CategoryAlto: {
			"Programar conversaciones individuales de apoyo",
			"Reconectar el trabajo diario con el proposito del equipo",
			"Reducir interacciones de alta friccion detectadas",
			"Considerar apoyo profesional externo si persiste",
		},
	},
	mbi.SubscaleRP: {
		mbi.CategoryBajo: {
			"Celebrar los logros del ciclo con el equipo",
			"Mantener los objetivos con alcance realista",
		},
		mbi.CategoryMedio: {
			"Definir metas cortas con resultados visibles",
			"Dar feedback concreto sobre logros individuales",
			"Clarificar el impacto del trabajo de cada rol",
		},
		mbi.CategoryAlto: {
			"Revisar si los objetivos son alcanzables hoy",
			"Visibilizar avances pequenos de manera semanal",
			"Asignar tareas alineadas a las fortalezas de cada uno",
			"Acordar criterios de exito explicitos por entrega",
		},
	},
}

// Acciones extra cuando el estado escala a Riesgo Alto o Burnout.
var escalationActions = []string{
	"Tratar el resultado como prioridad del equipo esta semana",
	"Involucrar a recursos humanos o a un profesional de salud",
	"Planificar una reduccion temporal de alcance del sprint",
}

const actionsPerSubscale = 2

var subscaleNames = map[string]string{
	mbi.SubscaleAE: "Agotamiento Emocional",
	mbi.SubscaleD:  "Despersonalizacion",
	mbi.SubscaleRP: "Realizacion Personal",
}

// Generate deriva categorias y estado del input y arma el consejo.
func (HeuristicAdviceGenerator) Generate(input domain.AdviceInput) domain.Advice {
	totals := mbi.Totals{AE: input.Current.AE, D: input.Current.D, RP: input.Current.RP}
	categories := mbi.Classify(totals)
	status := mbi.ResolveStatus(categories)

	var keyRisks []string
	for _, sub := range []struct {
		code, category string
	}{
		{mbi.SubscaleAE, categories.AE},
		{mbi.SubscaleD, categories.D},
		{mbi.SubscaleRP, categories.RP},
	} {
		if sub.category == mbi.CategoryAlto {
			keyRisks = append(keyRisks, subscaleNames[sub.code])
		}
	}

	var actions []string
	actions = append(actions, pickActions(heuristicActions[mbi.SubscaleAE][categories.AE], actionsPerSubscale)...)
	actions = append(actions, pickActions(heuristicActions[mbi.SubscaleD][categories.D], actionsPerSubscale)...)
	actions = append(actions, pickActions(heuristicActions[mbi.SubscaleRP][categories.RP], actionsPerSubscale)...)
	if status == mbi.StatusRiesgoAlto || status == mbi.StatusBurnout {
		actions = append(actions, pickActions(escalationActions, 2)...)
	}

	return domain.Advice{
		Summary:  buildSummary(input, categories, status),
		KeyRisks: keyRisks,
		Actions:  actions,
		Source:   domain.AdviceSourceHeuristic,
	}
}

// pickActions toma hasta n elementos al azar, sin garantia de orden.
func pickActions(candidates []string, n int) []string {
	if len(candidates) <= n {
		return append([]string(nil), candidates...)
	}
	shuffled := append([]string(nil), candidates...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func buildSummary(input domain.AdviceInput, categories mbi.Categories, status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agotamiento Emocional en %s, Despersonalizacion en %s y Realizacion Personal en %s. Estado: %s.",
		categories.AE, categories.D, categories.RP, status)

	if input.Previous != nil {
		fmt.Fprintf(&b, " Respecto al ciclo anterior: AE %s, D %s, RP %s, bienestar %s.",
			trendWord(input.Current.AE, input.Previous.AE),
			trendWord(input.Current.D, input.Previous.D),
			trendWord(input.Current.RP, input.Previous.RP),
			trendWord(input.Current.Wellbeing, input.Previous.Wellbeing),
		)
	}
	return b.String()
}

func trendWord(current, previous int) string {
	switch {
	case current > previous:
		return "sube"
	case current < previous:
		return "baja"
	default:
		return "estable"
	}
}
