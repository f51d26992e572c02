package repositories

import "gorm.io/gorm"

// TxManager выполняет fn в транзакции. Сервисы получают его через
// конструктор, чтобы в unit-тестах транзакцию можно было подменить.
type TxManager interface {
	WithinTx(db *gorm.DB, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct{}

func NewTxManager() TxManager {
	return gormTxManager{}
}

func (gormTxManager) WithinTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
