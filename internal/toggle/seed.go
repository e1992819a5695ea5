package toggle

import "github.com/TimurManjosov/apollo/internal/rules"

// Seed returns the sample collection used when a store holds no data yet.
func Seed(today string) []Toggle {
	return []Toggle{
		{
			ID:          NewID(),
			Key:         "new_checkout_experience",
			Name:        "New checkout experience",
			Description: "Enables the redesigned multi-step checkout flow for premium users.",
			Status:      StatusEnabled,
			CreatedAt:   today,
			UpdatedAt:   today,
			Audiences: []Audience{
				{
					ID:   NewID(),
					Name: "Beijing beta users",
					Rules: []rules.Rule{
						{ID: NewID(), Attribute: rules.AttrCity, Operator: rules.OpEquals, Value: "Beijing"},
						{ID: NewID(), Attribute: rules.AttrUserID, Operator: rules.OpIn, Value: "1001,1002,1003"},
					},
				},
				{
					ID:   NewID(),
					Name: "10% random traffic",
					Rules: []rules.Rule{
						{ID: NewID(), Attribute: rules.AttrTraffic, Operator: rules.OpBetween, Value: "0,10"},
					},
				},
			},
		},
	}
}
