package model

import (
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
	notificationmodel "github.com/compozy/defaultdesk/engine/notification/model"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
)

// Application is a request to flip a customer's default status. ReviewedBy
// and ReviewedAt are set exactly when Status is terminal.
type Application struct {
	ID         core.ID          `db:"id"          json:"id"`
	Type       reasonmodel.Type `db:"type"        json:"type"`
	CustomerID core.ID          `db:"customer_id" json:"customer_id"`
	ReasonID   core.ID          `db:"reason_id"   json:"reason_id"`
	Rating     *string          `db:"rating"      json:"rating,omitempty"`
	Severity   *Severity        `db:"severity"    json:"severity,omitempty"`
	Remark     *string          `db:"remark"      json:"remark,omitempty"`
	Status     Status           `db:"status"      json:"status"`
	CreatedBy  core.ID          `db:"created_by"  json:"created_by"`
	ReviewedBy *core.ID         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt  time.Time        `db:"created_at"  json:"created_at"`
	ReviewedAt *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// Summary is a search row with the names a list screen displays.
type Summary struct {
	Application
	CustomerName      string `db:"customer_name"      json:"customer_name"`
	ReasonDescription string `db:"reason_description" json:"reason_description"`
}

type SearchFilter struct {
	CustomerName string
	Status       Status
	Type         reasonmodel.Type
	Limit        int
	Offset       int
}

// Review is what a decision writes inside the review transaction.
// CustomerDefault is nil when the customer is left untouched.
type Review struct {
	Decision        Decision
	ReviewedBy      core.ID
	ReviewedAt      time.Time
	CustomerDefault *bool
	Notification    *notificationmodel.Notification
}

// ReviewNotice is the inbox line sent to the application's creator.
func ReviewNotice(id core.ID, decision Decision) string {
	return fmt.Sprintf("Application #%s %s", id, decision)
}
