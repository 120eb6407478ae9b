package board

// DefaultNotes returns the notes a fresh board starts with.
func DefaultNotes(userID string) []Note {
	return []Note{
		{
			ID:           1,
			Title:        "Buy Milk",
			Content:      "Don't forget to pick up milk on the way home!",
			Color:        Orange,
			X:            100,
			Y:            100,
			Rotate:       "rotate(2deg)",
			ShadowHeight: 15,
			ShadowBlur:   30,
			UserID:       userID,
		},
		{
			ID:           2,
			Title:        "Pay Bills",
			Content:      "Electricity bill due on Friday",
			Color:        Blue,
			X:            400,
			Y:            150,
			Rotate:       "rotate(-3deg)",
			ShadowHeight: 12,
			ShadowBlur:   25,
			UserID:       userID,
		},
		{
			ID:           3,
			Title:        "Call Mom",
			Content:      "Call mom to wish her happy birthday",
			Color:        Purple,
			X:            200,
			Y:            300,
			Rotate:       "rotate(1.5deg)",
			ShadowHeight: 14,
			ShadowBlur:   28,
			UserID:       userID,
		},
	}
}
