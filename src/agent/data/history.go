package data

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verisight-labs/trustagent/src/agent/types"
)

// Scan is one persisted run summary. The full evidence set is not stored;
// the row exists so operators can see what was scanned and how it scored.
type Scan struct {
	ID          string `gorm:"primaryKey;size:36"`
	WebsiteURL  string `gorm:"size:2048"`
	TrustScore  int    `gorm:"not null"`
	AITextScore *float64
	FakeFacts   int
	TrueFacts   int
	FakeMedia   int
	TrueMedia   int
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

// History records finished runs. A nil History is a no-op, which is how the
// feature stays optional.
type History struct {
	db *gorm.DB
}

func NewHistory(db *gorm.DB) (*History, error) {
	if err := db.AutoMigrate(&Scan{}); err != nil {
		return nil, err
	}
	return &History{db: db}, nil
}

// Record writes one scan row; failures are logged, never propagated, so
// storage outages cannot fail a run that already produced a verdict.
func (h *History) Record(websiteURL string, resp types.AgentRunResponse) {
	if h == nil {
		return
	}
	scan := Scan{
		ID:          uuid.NewString(),
		WebsiteURL:  websiteURL,
		TrustScore:  resp.TrustScore,
		AITextScore: resp.AITextScore,
		FakeFacts:   len(resp.FakeFacts),
		TrueFacts:   len(resp.TrueFacts),
		FakeMedia:   len(resp.FakeMedia),
		TrueMedia:   len(resp.TrueMedia),
	}
	if err := h.db.Create(&scan).Error; err != nil {
		log.Printf("data: failed to record scan: %v", err)
	}
}
