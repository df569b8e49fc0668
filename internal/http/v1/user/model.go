package user

import (
	"github.com/janisto/account-settings/internal/platform/timeutil"
)

// User is the account snapshot the settings dialogs read.
type User struct {
	ID               string        `json:"id"                         doc:"Unique identifier"                    example:"user-123"`
	Email            string        `json:"email"                      doc:"Email address"                        example:"jane@example.com"`
	FirstName        string        `json:"firstName"                  doc:"First name"                           example:"Jane"`
	LastName         string        `json:"lastName"                   doc:"Last name"                            example:"Doe"`
	Username         string        `json:"username"                   doc:"Unique username"                      example:"jane_doe"`
	Photo            string        `json:"photo,omitempty"            doc:"Avatar URL"                           example:"https://storage.googleapis.com/bucket/earn-pfp/a.png"`
	CurrentSponsorID string        `json:"currentSponsorId,omitempty" doc:"Sponsor the user currently acts for" example:"sponsor-42"`
	IsTalentFilled   bool          `json:"isTalentFilled"             doc:"Talent profile is complete"           example:"true"`
	EmailSettings    []string      `json:"emailSettings"              doc:"Subscribed email categories"          example:"[\"replyOrTagComment\"]"`
	CreatedAt        timeutil.Time `json:"createdAt"                  doc:"Creation timestamp"                   example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt        timeutil.Time `json:"updatedAt"                  doc:"Last update timestamp"                example:"2024-01-15T10:30:00.000Z"`
}

// Availability answers a username uniqueness lookup.
type Availability struct {
	Available bool   `json:"available"        doc:"Username can be claimed by the caller" example:"false"`
	Reason    string `json:"reason,omitempty" doc:"Why the username cannot be claimed"    example:"taken"`
}

// Availability reasons.
const (
	ReasonTaken   = "taken"
	ReasonInvalid = "invalid"
)
