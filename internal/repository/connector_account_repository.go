package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
)

type ConnectorAccountRepository struct {
	db *sql.DB
}

func NewConnectorAccountRepository(db *sql.DB) *ConnectorAccountRepository {
	return &ConnectorAccountRepository{db: db}
}

func (r *ConnectorAccountRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS merchant_connector_accounts (
			merchant_connector_id VARCHAR(255) PRIMARY KEY,
			merchant_id VARCHAR(255) NOT NULL,
			connector_name VARCHAR(64) NOT NULL,
			profile_id VARCHAR(255),
			disabled BOOLEAN NOT NULL DEFAULT FALSE,
			test_mode BOOLEAN,
			connector_account_details JSONB NOT NULL,
			metadata JSONB,
			connector_wallets_details JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mca_merchant_id ON merchant_connector_accounts(merchant_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// GetByID returns ResourceIDNotFound when the account does not exist or
// belongs to another merchant.
func (r *ConnectorAccountRepository) GetByID(ctx context.Context, merchantID, merchantConnectorID string) (*routerdata.ConnectorAccount, error) {
	var (
		acc                           routerdata.ConnectorAccount
		details, meta, walletsDetails []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT merchant_id, merchant_connector_id, connector_name, profile_id, disabled, test_mode,
			connector_account_details, metadata, connector_wallets_details
		FROM merchant_connector_accounts WHERE merchant_id = $1 AND merchant_connector_id = $2
	`, merchantID, merchantConnectorID).Scan(&acc.MerchantID, &acc.MerchantConnectorID, &acc.ConnectorName,
		&acc.ProfileID, &acc.Disabled, &acc.TestMode, &details, &meta, &walletsDetails)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierror.ResourceIDNotFound()
	}
	if err != nil {
		return nil, err
	}
	acc.ConnectorAccountDetails = details
	acc.Metadata = meta
	acc.ConnectorWalletsDetails = walletsDetails
	return &acc, nil
}

func (r *ConnectorAccountRepository) Save(ctx context.Context, acc *routerdata.ConnectorAccount) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO merchant_connector_accounts (merchant_connector_id, merchant_id, connector_name, profile_id,
			disabled, test_mode, connector_account_details, metadata, connector_wallets_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (merchant_connector_id) DO UPDATE SET
			connector_name = EXCLUDED.connector_name,
			profile_id = EXCLUDED.profile_id,
			disabled = EXCLUDED.disabled,
			test_mode = EXCLUDED.test_mode,
			connector_account_details = EXCLUDED.connector_account_details,
			metadata = EXCLUDED.metadata,
			connector_wallets_details = EXCLUDED.connector_wallets_details,
			updated_at = NOW()
	`, acc.MerchantConnectorID, acc.MerchantID, acc.ConnectorName, acc.ProfileID, acc.Disabled, acc.TestMode,
		jsonColumn(acc.ConnectorAccountDetails), jsonColumn(acc.Metadata), jsonColumn(acc.ConnectorWalletsDetails))
	return err
}

// jsonColumn maps an empty blob to NULL so JSONB columns never receive "".
func jsonColumn(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
