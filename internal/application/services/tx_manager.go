package services

import (
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

// TransactionManager is an alias to the persistence implementation so service
// constructors can accept it without the package qualifier.
type TransactionManager = persistence.TransactionManager

// NewTransactionManager creates a transaction manager over the shared connection
func NewTransactionManager(db *database.MySQLConnection) *TransactionManager {
	return persistence.NewTransactionManager(db)
}
