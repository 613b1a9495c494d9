package postgres

import (
	"context"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) repositories.PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListRolePermissions(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.RolePermission, error) {
	db := pickDB(r.db, tx)
	var rows []*models.RolePermission

	if err := db.WithContext(ctx).
		Where("role = ?", role).
		Order("menu_item ASC").
		Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list role permissions")
	}

	return rows, nil
}

func (r *permissionRepository) GetRoleDefinition(ctx context.Context, tx *gorm.DB, role models.UserRole) (*models.RoleDefinition, error) {
	db := pickDB(r.db, tx)
	var def models.RoleDefinition

	if err := db.WithContext(ctx).
		Where("name = ?", role).
		First(&def).Error; err != nil {
		return nil, handleDBError(err, "get role definition")
	}

	return &def, nil
}

func (r *permissionRepository) UpdateRolePermission(ctx context.Context, tx *gorm.DB, role models.UserRole, menu models.Menu, enabled bool) error {
	db := pickDB(r.db, tx)
	row := &models.RolePermission{
		Role:      role,
		MenuItem:  menu,
		IsEnabled: enabled,
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}, {Name: "menu_item"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return handleDBError(err, "update role permission")
	}

	return nil
}

func (r *permissionRepository) SaveFeatureRules(ctx context.Context, tx *gorm.DB, role models.UserRole, rules []models.FeatureRule) error {
	db := pickDB(r.db, tx)
	def := &models.RoleDefinition{
		Name:        role,
		Permissions: datatypes.JSONSlice[models.FeatureRule](rules),
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"permissions", "updated_at"}),
		}).
		Create(def).Error; err != nil {
		return handleDBError(err, "save feature rules")
	}

	return nil
}
