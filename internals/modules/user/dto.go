package user

type ProfileResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	PreferredLocale string `json:"preferred_locale"`
	UpdatedAt       string `json:"updated_at"`
}

type UpsertProfileRequest struct {
	Email           string `json:"email" validate:"required,email"`
	PreferredLocale string `json:"preferred_locale" validate:"omitempty,bcp47_language_tag"`
}
