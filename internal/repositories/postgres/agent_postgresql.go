package postgres

import (
	"context"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"gorm.io/gorm"
)

type agentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) repositories.AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Agent, error) {
	db := pickDB(r.db, tx)
	var agent models.Agent

	if err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&agent).Error; err != nil {
		return nil, handleDBError(err, "get agent by id")
	}

	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.AgentFilters) ([]*models.Agent, error) {
	db := pickDB(r.db, tx)
	var agents []*models.Agent

	query := db.WithContext(ctx).Model(&models.Agent{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SortBy == "" {
		filters.SortBy = "name"
		filters.SortOrder = "asc"
	}
	query = ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&agents).Error; err != nil {
		return nil, handleDBError(err, "list agents")
	}

	return agents, nil
}

func (r *agentRepository) GetStudentIDs(ctx context.Context, tx *gorm.DB, agentID string) ([]string, error) {
	db := pickDB(r.db, tx)
	var ids []string

	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("agent_id = ?", agentID).
		Pluck("id", &ids).Error; err != nil {
		return nil, handleDBError(err, "get agent student ids")
	}

	return ids, nil
}
