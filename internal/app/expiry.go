// internal/app/expiry.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/domain/document"
	"medication_notifier/internal/domain/medication"
	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/page"
	"medication_notifier/internal/domain/user"
)

// cabinetExpiryReader pages cabinet entries with remaining doses whose
// expiry date falls inside the warn window.
type cabinetExpiryReader struct {
	entries cabinet.EntryRepository
	until   time.Time
}

func (r *cabinetExpiryReader) ReadPage(ctx context.Context, req page.Request) ([]*cabinet.Entry, error) {
	return r.entries.ListExpiringUntil(ctx, r.until, req)
}

// cabinetExpiryProcessor splits near-expiry entries into "expired"
// (expiry date not after the owner's local today) and "almost expired".
type cabinetExpiryProcessor struct {
	medications medication.Repository
	users       user.Directory
	now         time.Time
	warnDays    int
	ttl         time.Duration
	log         *logrus.Logger
}

func (p *cabinetExpiryProcessor) Process(ctx context.Context, e *cabinet.Entry) (*notification.Notification, error) {
	med, err := p.medications.GetByIDForUser(ctx, e.MedicationID, e.UserID)
	if err != nil {
		p.log.Debugf("skipping cabinet entry %d: medication lookup: %v", e.ID, err)
		return nil, nil
	}

	owner, err := p.users.GetByID(ctx, e.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving user %d: %w", e.UserID, err)
	}
	today := owner.LocalNow(p.now)

	switch classifyExpiry(e.ExpiresAt, today, p.warnDays) {
	case expiryPassed:
		return notification.New(
			e.UserID,
			notification.TypeCabinetEntryExpired,
			e.ID,
			"Medication expired",
			fmt.Sprintf("A package of %s in your cabinet has expired.", med.Name),
			p.now.Add(p.ttl),
		), nil
	case expiryNear:
		return notification.New(
			e.UserID,
			notification.TypeCabinetEntryAlmostExpired,
			e.ID,
			"Medication almost expired",
			fmt.Sprintf("A package of %s expires on %s.", med.Name, e.ExpiresAt.Format("2006-01-02")),
			p.now.Add(p.ttl),
		), nil
	}
	return nil, nil
}

// documentExpiryReader pages documents whose expiry date falls inside
// the warn window.
type documentExpiryReader struct {
	documents document.Repository
	until     time.Time
}

func (r *documentExpiryReader) ReadPage(ctx context.Context, req page.Request) ([]*document.Document, error) {
	return r.documents.ListExpiringUntil(ctx, r.until, req)
}

type documentExpiryProcessor struct {
	users    user.Directory
	now      time.Time
	warnDays int
	ttl      time.Duration
}

func (p *documentExpiryProcessor) Process(ctx context.Context, d *document.Document) (*notification.Notification, error) {
	owner, err := p.users.GetByID(ctx, d.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving user %d: %w", d.UserID, err)
	}
	today := owner.LocalNow(p.now)

	switch classifyExpiry(d.ExpiresAt, today, p.warnDays) {
	case expiryPassed:
		return notification.New(
			d.UserID,
			notification.TypeDocumentExpired,
			d.ID,
			"Document expired",
			fmt.Sprintf("Your document %q has expired.", d.Name),
			p.now.Add(p.ttl),
		), nil
	case expiryNear:
		return notification.New(
			d.UserID,
			notification.TypeDocumentAlmostExpired,
			d.ID,
			"Document almost expired",
			fmt.Sprintf("Your document %q expires on %s.", d.Name, d.ExpiresAt.Format("2006-01-02")),
			p.now.Add(p.ttl),
		), nil
	}
	return nil, nil
}

type expiryClass int

const (
	expiryOutsideWindow expiryClass = iota
	expiryPassed
	expiryNear
)

// classifyExpiry compares an expiry date against the owner's local today.
// The reader's cutoff is computed from server time, so the per-user check
// here is the authoritative one.
func classifyExpiry(expiresAt, today time.Time, warnDays int) expiryClass {
	expiry := dateOf(expiresAt)
	day := dateOf(today)

	if !expiry.After(day) {
		return expiryPassed
	}
	if !expiry.After(day.AddDate(0, 0, warnDays)) {
		return expiryNear
	}
	return expiryOutsideWindow
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
