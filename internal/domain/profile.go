package domain

import "time"

// Profile is the marketplace-facing document for a user. Created as a mirror
// of the User at signup and merge-updated on profile edits; never deleted.
type Profile struct {
	UserID                string    `json:"userId" dynamodbav:"user_id"`
	Email                 string    `json:"email" dynamodbav:"email"`
	Name                  string    `json:"name" dynamodbav:"name"`
	Role                  string    `json:"role" dynamodbav:"role"`
	EmailVerified         bool      `json:"emailVerified" dynamodbav:"email_verified"`
	ContactInfo           string    `json:"contactInfo,omitempty" dynamodbav:"contact_info"`
	Location              string    `json:"location,omitempty" dynamodbav:"location"`
	Skills                []string  `json:"skills,omitempty" dynamodbav:"skills"`
	ExperienceYears       int       `json:"experienceYears,omitempty" dynamodbav:"experience_years"`
	ServicesOffered       []string  `json:"servicesOffered,omitempty" dynamodbav:"services_offered"`
	ServiceArea           string    `json:"serviceArea,omitempty" dynamodbav:"service_area"`
	Availability          string    `json:"availability,omitempty" dynamodbav:"availability"`
	ServiceNeeds          string    `json:"serviceNeeds,omitempty" dynamodbav:"service_needs"`
	PreferredServiceTypes []string  `json:"preferredServiceTypes,omitempty" dynamodbav:"preferred_service_types"`
	LocationPreferences   string    `json:"locationPreferences,omitempty" dynamodbav:"location_preferences"`
	ProfileImage          string    `json:"profileImage,omitempty" dynamodbav:"profile_image"`
	CreatedAt             time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time `json:"updated" dynamodbav:"updated_at"`
}

// UpdateProfileRequest carries profile edits. List-valued fields arrive as
// comma-separated strings and are split before persisting.
type UpdateProfileRequest struct {
	Name                  *string `json:"name"`
	Role                  *string `json:"role"`
	ContactInfo           *string `json:"contactInfo"`
	Location              *string `json:"location"`
	Skills                *string `json:"skills"`
	ExperienceYears       *string `json:"experienceYears"`
	ServicesOffered       *string `json:"servicesOffered"`
	ServiceArea           *string `json:"serviceArea"`
	Availability          *string `json:"availability"`
	ServiceNeeds          *string `json:"serviceNeeds"`
	PreferredServiceTypes *string `json:"preferredServiceTypes"`
	LocationPreferences   *string `json:"locationPreferences"`
}
