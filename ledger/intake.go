package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nastradacha/inventory-app/models"
	"github.com/nastradacha/inventory-app/similarity"
	"gorm.io/gorm"
)

// DuplicateThreshold is the token-set similarity score (0-100) above which
// a proposed product name is treated as a likely duplicate of an existing
// catalog entry and the intake is staged for confirmation.
const DuplicateThreshold = 85

// PendingIntakeTTL bounds how long a staged intake stays confirmable.
const PendingIntakeTTL = 30 * time.Minute

// IntakeResult is the outcome of IntakeStock: exactly one of Product
// (intake applied) or Pending (intake staged) is set.
type IntakeResult struct {
	Product *models.Product       `json:"product,omitempty"`
	Pending *models.PendingIntake `json:"pending,omitempty"`
}

// IntakeStock screens the proposed name against the catalog before applying
// the intake. An exact (case-insensitive) name match restocks that product
// directly. Otherwise every catalog entry is scored in id order and the
// FIRST one over the threshold stages the intake; when nothing matches the
// intake is applied as a new product. Screening stops at the first hit
// rather than ranking the whole catalog.
func (l *Ledger) IntakeStock(in RestockInput, actor Actor) (*IntakeResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result IntakeResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		_, err := findByNameCI(tx, in.Name)
		switch {
		case err == nil:
			// Known product: plain restock, no screening.
			p, err := l.restockTx(tx, in, actor)
			if err != nil {
				return err
			}
			result.Product = p
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to look up product: %w", err)
		}

		var catalog []models.Product
		if err := tx.Select("id", "name").Order("id").Find(&catalog).Error; err != nil {
			return fmt.Errorf("failed to scan catalog: %w", err)
		}
		for i := range catalog {
			score := similarity.TokenSetRatio(in.Name, catalog[i].Name)
			if score <= DuplicateThreshold {
				continue
			}
			pending, err := l.stageIntake(tx, in, actor, &catalog[i], score)
			if err != nil {
				return err
			}
			result.Pending = pending
			return nil
		}

		p, err := l.restockTx(tx, in, actor)
		if err != nil {
			return err
		}
		result.Product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// stageIntake parks the intake for the acting user, replacing any earlier
// staging of theirs.
func (l *Ledger) stageIntake(tx *gorm.DB, in RestockInput, actor Actor, match *models.Product, score int) (*models.PendingIntake, error) {
	if err := tx.Where("user_id = ?", actor.UserID).Delete(&models.PendingIntake{}).Error; err != nil {
		return nil, fmt.Errorf("failed to clear earlier staging: %w", err)
	}
	category := in.Category
	if category == "" {
		category = "General"
	}
	pending := models.PendingIntake{
		Token:            uuid.NewString(),
		UserID:           actor.UserID,
		ExpiresAt:        l.now().Add(PendingIntakeTTL),
		Name:             in.Name,
		Category:         category,
		CostPrice:        in.CostPrice,
		SellingPrice:     in.SellingPrice,
		Quantity:         in.Quantity,
		SafetyStock:      in.SafetyStock,
		ExpiryDate:       in.ExpiryDate,
		MatchedProductID: match.ID,
		MatchedName:      match.Name,
		Score:            score,
	}
	if err := tx.Create(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to stage intake: %w", err)
	}
	if err := appendLog(tx, actor, models.ActionIntakeStaged,
		"Staged intake of %q: looks like %q (score %d)", in.Name, match.Name, score); err != nil {
		return nil, err
	}
	return &pending, nil
}

// ConfirmIntake applies a staged intake. With useMatched the quantity and
// prices flow into the matched catalog entry as a restock; without it the
// intake proceeds under the proposed name as originally intended.
func (l *Ledger) ConfirmIntake(token string, useMatched bool, actor Actor) (*models.Product, error) {
	var result *models.Product
	var expired *models.PendingIntake
	err := l.db.Transaction(func(tx *gorm.DB) error {
		pending, err := l.takePending(tx, token, actor)
		if err != nil {
			if errors.Is(err, errStagingExpired) {
				expired = pending
			}
			return err
		}
		in := RestockInput{
			Name:         pending.Name,
			Category:     pending.Category,
			CostPrice:    pending.CostPrice,
			SellingPrice: pending.SellingPrice,
			Quantity:     pending.Quantity,
			SafetyStock:  pending.SafetyStock,
			ExpiryDate:   pending.ExpiryDate,
		}
		if useMatched {
			in.Name = pending.MatchedName
		}
		p, err := l.restockTx(tx, in, actor)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		if expired != nil {
			return nil, l.discardExpired(expired)
		}
		return nil, err
	}
	return result, nil
}

// CancelIntake discards a staged intake without touching stock.
func (l *Ledger) CancelIntake(token string, actor Actor) error {
	var expired *models.PendingIntake
	err := l.db.Transaction(func(tx *gorm.DB) error {
		pending, err := l.takePending(tx, token, actor)
		if err != nil {
			if errors.Is(err, errStagingExpired) {
				expired = pending
			}
			return err
		}
		return appendLog(tx, actor, models.ActionIntakeCancelled,
			"Cancelled staged intake of %q", pending.Name)
	})
	if err != nil && expired != nil {
		return l.discardExpired(expired)
	}
	return err
}

// errStagingExpired aborts the surrounding transaction; the caller turns it
// into a ValidationError after cleaning up the dead row.
var errStagingExpired = errors.New("staging expired")

// takePending loads and removes the actor's staged intake, rejecting
// unknown tokens and other users' stagings. An expired staging is returned
// alongside errStagingExpired so the caller can discard it.
func (l *Ledger) takePending(tx *gorm.DB, token string, actor Actor) (*models.PendingIntake, error) {
	var pending models.PendingIntake
	err := tx.Where("token = ? AND user_id = ?", token, actor.UserID).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, validationErrorf("no pending intake for this token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up pending intake: %w", err)
	}
	if pending.Expired(l.now()) {
		return &pending, errStagingExpired
	}
	if err := tx.Delete(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to remove pending intake: %w", err)
	}
	return &pending, nil
}

// discardExpired deletes an expired staging on the base handle, after the
// surrounding transaction has rolled back, so the dead row does not linger
// until the user stages again.
func (l *Ledger) discardExpired(pending *models.PendingIntake) error {
	if err := l.db.Delete(pending).Error; err != nil {
		return fmt.Errorf("failed to remove expired staging: %w", err)
	}
	return validationErrorf("pending intake for %q has expired, submit it again", pending.Name)
}

// PendingFor returns the actor's live staged intake, or nil when there is
// none (or it has expired).
func (l *Ledger) PendingFor(actor Actor) (*models.PendingIntake, error) {
	var pending models.PendingIntake
	err := l.db.Where("user_id = ?", actor.UserID).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up pending intake: %w", err)
	}
	if pending.Expired(l.now()) {
		return nil, nil
	}
	return &pending, nil
}
