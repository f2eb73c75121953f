package survey

// Demo returns the workplace-wellbeing survey shipped as the default
// template.
func Demo() Survey {
	yesNo := func() Body { return Choice{Options: []string{"Sì", "No"}} }
	return Survey{
		Title:       "Business Happiness",
		Description: "Aiutaci a migliorare la tua esperienza lavorativa.",
		Questions: []Question{
			{ID: "q1", Label: "Ti senti soddisfatto/a al lavoro?", Body: yesNo()},
			{ID: "q1a", Label: "Perché ti senti soddisfatto/a?", Body: Text{Multiline: true}},
			{ID: "q1b", Label: "Cosa ti rende insoddisfatto/a?", Body: Text{Multiline: true}},
			{ID: "q2", Label: "Quanto ti senti ascoltato/a (1-10)?", Body: Range{Slider: true, Min: 1, Max: 10}},
			{ID: "q3", Label: "Hai un buon equilibrio tra vita privata e lavoro?", Body: yesNo()},
			{ID: "q4", Label: "Hai suggerimenti per migliorare?", Body: Text{Multiline: true}},
			{ID: "q5", Label: "Quanto è chiaro il tuo ruolo all'interno dell'azienda?", Body: Choice{
				Options: []string{"Molto", "Abbastanza", "Poco", "Per niente"},
			}},
			{ID: "q6", Label: "Quali elementi influenzano maggiormente il tuo benessere?", Body: Choice{
				Multiple: true,
				Options: []string{
					"Carico di lavoro",
					"Ambiente di lavoro",
					"Relazioni con colleghi",
					"Leadership",
					"Flessibilità",
				},
			}},
			{ID: "q7", Label: "Cosa ti rende orgoglioso/a del tuo lavoro?", Body: Text{Multiline: true}},
		},
		LogicRules: []LogicRule{
			{
				ID:             "rule1",
				Operator:       All,
				Conditions:     []Condition{{QuestionID: "q1", Operator: OpEquals, Value: "Sì"}},
				ShowQuestionID: "q1a",
			},
			{
				ID:             "rule2",
				Operator:       All,
				Conditions:     []Condition{{QuestionID: "q1", Operator: OpEquals, Value: "No"}},
				ShowQuestionID: "q1b",
			},
		},
	}
}

