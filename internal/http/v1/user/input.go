package user

// GetInput for GET /user (no body needed)
type GetInput struct{}

// DetailsInput for POST /user/details
type DetailsInput struct {
	Body struct {
		FirstName string `json:"firstName"       minLength:"1" maxLength:"100"                                 doc:"First name" example:"Jane"`
		LastName  string `json:"lastName"        minLength:"1" maxLength:"100"                                 doc:"Last name"  example:"Doe"`
		Username  string `json:"username"        minLength:"3" maxLength:"40" pattern:"^[A-Za-z0-9_-]+$" doc:"Username"   example:"jane_doe"`
		Photo     string `json:"photo,omitempty" maxLength:"2048" format:"uri"                                 doc:"Avatar URL; omit to remove the photo"`
	}
}

// EmailSettingsInput for POST /user/email-settings
type EmailSettingsInput struct {
	Body struct {
		Categories []string `json:"categories" maxItems:"32" doc:"Subscribed category ids among those the caller may manage" example:"[\"replyOrTagComment\"]"`
	}
}

// AvailabilityInput for GET /user/username-availability
type AvailabilityInput struct {
	Username string `query:"username" required:"true" maxLength:"64" doc:"Candidate username" example:"jane_doe"`
}
