package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optinhub/optin-manager/internal/domain"
)

// CampaignRepository manages persistence for campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	List(ctx context.Context, limit, offset int) ([]domain.Campaign, error)
}

type campaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository constructs repository.
func NewCampaignRepository(pool *pgxpool.Pool) CampaignRepository {
	return &campaignRepository{pool: pool}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	const query = `
        INSERT INTO campaigns (name, keyword, description, status, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		campaign.Name,
		campaign.Keyword,
		campaign.Description,
		campaign.Status,
		campaign.CreatedBy,
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
}

func (r *campaignRepository) List(ctx context.Context, limit, offset int) ([]domain.Campaign, error) {
	const query = `
        SELECT id, name, keyword, description, status, created_by, created_at, updated_at
        FROM campaigns ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Keyword, &c.Description, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
