package posserver

import "time"

type ItemCreate struct {
	Name     string `json:"name"`
	Price    Amount `json:"price"`
	Category string `json:"category,omitempty"`
}

type ItemUpdate struct {
	Name     *string `json:"name,omitempty"`
	Price    *Amount `json:"price,omitempty"`
	Category *string `json:"category,omitempty"`
}

type EmployeeCreate struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type EmployeeUpdate struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

type SettingsUpdate struct {
	BusinessName   *string           `json:"businessName,omitempty"`
	TaxRatePercent *Amount           `json:"taxRatePercent,omitempty"`
	Theme          map[string]string `json:"theme,omitempty"`
}

type Created struct {
	Id string `json:"id"`
}

// Confirmation is a pending delete waiting for POST /v1/admin/confirmations/{token}.
type Confirmation struct {
	Token       string    `json:"token"`
	Kind        string    `json:"kind"`
	TargetId    string    `json:"targetId"`
	Label       string    `json:"label"`
	RequestedAt time.Time `json:"requestedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
