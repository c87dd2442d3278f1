package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/storefront-go/storefront/internal/apperr"
)

// AddressRepo is the thin ownership check over the addresses table;
// address CRUD itself lives outside this core.
type AddressRepo struct {
	db *sql.DB
}

func NewAddressRepo(db *sql.DB) *AddressRepo {
	return &AddressRepo{db: db}
}

func (r *AddressRepo) BelongsTo(ctx context.Context, addressID, customerID string) (bool, error) {
	addrID, err := uuid.Parse(addressID)
	if err != nil {
		return false, apperr.Validation("addressId", "invalid address id")
	}
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return false, apperr.Validation("customerId", "invalid customer id")
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM addresses WHERE id = $1 AND customer_id = $2
		)`, addrID, custID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
