package model

import "time"

// Test is an ordered list of questions assigned to one or more classes.
type Test struct {
	ID                  string     `json:"id,omitempty"`
	Name                string     `json:"name"`
	AssignedClassNames  []string   `json:"assigned_class_names"`
	Questions           []Question `json:"questions"`
	OwnerID             string     `json:"owner_id"`
	Published           bool       `json:"published"`
	PublishedToClassIDs []string   `json:"published_to_class_ids"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PublicationStatus summarises how many assigned classes a test is published to.
type PublicationStatus struct {
	AssignedClassIDs   []string `json:"assigned_class_ids"`
	PublishedCount     int      `json:"published_count"`
	TotalAssigned      int      `json:"total_assigned"`
	FullyPublished     bool     `json:"fully_published"`
	PartiallyPublished bool     `json:"partially_published"`
	Percent            float64  `json:"percent"`
}

// TestOverview pairs a test with its publication status for list screens.
type TestOverview struct {
	Test
	Status PublicationStatus `json:"publication_status"`
}

// CreateTestRequest is the payload for assembling a test from bank items.
type CreateTestRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=255"`
	ClassNames []string `json:"class_names" binding:"required,min=1,dive,min=1,max=100"`
	ItemIDs    []string `json:"item_ids" binding:"dive,min=1,max=64"`
}

// UpdateTestRequest is the payload saved from the test editor.
type UpdateTestRequest struct {
	Name       string         `json:"name" binding:"required,min=1,max=255"`
	ClassNames []string       `json:"class_names" binding:"required,min=1,dive,min=1,max=100"`
	Questions  []DraftRequest `json:"questions" binding:"dive"`
}

// PublishTestRequest selects the classes a test is published to.
type PublishTestRequest struct {
	ClassIDs []string `json:"class_ids" binding:"dive,min=1,max=64"`
}
