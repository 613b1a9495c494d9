package postgres

import (
	"context"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"gorm.io/gorm"
)

type feeRepository struct {
	db *gorm.DB
}

func NewFeeRepository(db *gorm.DB) repositories.FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) ListCollectionsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*models.FeeCollection, error) {
	if len(studentIDs) == 0 {
		return []*models.FeeCollection{}, nil
	}

	db := pickDB(r.db, tx)
	var rows []*models.FeeCollection

	if err := db.WithContext(ctx).
		Select("id", "student_id", "amount_paid").
		Where("student_id IN ?", studentIDs).
		Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list fee collections")
	}

	return rows, nil
}

func (r *feeRepository) ListPaymentsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*models.FeePayment, error) {
	if len(studentIDs) == 0 {
		return []*models.FeePayment{}, nil
	}

	db := pickDB(r.db, tx)
	var rows []*models.FeePayment

	if err := db.WithContext(ctx).
		Select("id", "student_id", "amount_due", "amount_paid").
		Where("student_id IN ?", studentIDs).
		Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list fee payments")
	}

	return rows, nil
}
