// Package models holds the typed records stored through the data client.
package models

// Entity names used with dataclient.Client.
const (
	EntityClub        = "Club"
	EntityMember      = "Member"
	EntityTournament  = "Tournament"
	EntityMatch       = "Match"
	EntityNewsArticle = "NewsArticle"
	EntityReminderLog = "ReminderLog"
)

type Club struct {
	ID           string       `json:"id"`
	Name         string       `json:"name" validate:"required,max=200"`
	Slug         string       `json:"slug"`
	SportType    string       `json:"sport_type"`
	ContactEmail string       `json:"contact_email" validate:"omitempty,email"`
	Settings     ClubSettings `json:"settings"`
}

type ClubSettings struct {
	ComplianceDigest bool `json:"compliance_digest"`
}

type NewsArticle struct {
	ID            string `json:"id"`
	ClubID        string `json:"club_id" validate:"required"`
	Title         string `json:"title" validate:"required,max=300"`
	Slug          string `json:"slug"`
	Body          string `json:"body"`
	Status        string `json:"status" validate:"oneof=draft published"`
	SourceMatchID string `json:"source_match_id,omitempty"`
}

const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// ReminderLog records when a compliance reminder was last sent to a member.
type ReminderLog struct {
	ID       string `json:"id"`
	ClubID   string `json:"club_id"`
	MemberID string `json:"member_id"`
	SentAt   string `json:"sent_at"`
}
