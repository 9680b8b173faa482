package service

import (
	"testing"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupBalanceServiceTest(t *testing.T) (*BalanceService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "balance_service_test")
	return NewBalanceService(repository.NewBalanceRepository(db)), db
}

func TestBalanceCreditDebitInTx(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createCashbackTestUser(t, db, 1, constants.RoleClient)

	err := db.Transaction(func(tx *gorm.DB) error {
		balance, entry, err := svc.CreditInTx(tx, BalanceChangeInput{
			UserID:    1,
			Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("12.345")),
			EntryType: constants.BalanceEntryTypeCashback,
			Reference: "test:credit:1",
		})
		if err != nil {
			return err
		}
		// 入账金额按两位小数入账
		if !entry.Amount.Decimal.Equal(decimal.RequireFromString("12.35")) {
			t.Fatalf("unexpected entry amount: %s", entry.Amount.String())
		}
		if !balance.Balance.Decimal.Equal(decimal.RequireFromString("12.35")) {
			t.Fatalf("unexpected balance: %s", balance.Balance.String())
		}
		if entry.Direction != constants.BalanceDirectionIn {
			t.Fatalf("unexpected direction: %s", entry.Direction)
		}

		balance, entry, err = svc.DebitInTx(tx, BalanceChangeInput{
			UserID:    1,
			Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			EntryType: constants.BalanceEntryTypeWithdrawal,
			Reference: "test:debit:1",
		})
		if err != nil {
			return err
		}
		if !balance.Balance.Decimal.Equal(decimal.RequireFromString("2.35")) {
			t.Fatalf("unexpected balance after debit: %s", balance.Balance.String())
		}
		if !entry.BalanceAfter.Decimal.Equal(decimal.RequireFromString("2.35")) {
			t.Fatalf("unexpected balance_after: %s", entry.BalanceAfter.String())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	balance, err := svc.GetBalance(1)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.TotalEarned.Decimal.Equal(decimal.RequireFromString("12.35")) {
		t.Fatalf("unexpected total earned: %s", balance.TotalEarned.String())
	}
	if !balance.TotalSpent.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected total spent: %s", balance.TotalSpent.String())
	}
}

func TestBalanceChangeIdempotentByReference(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createCashbackTestUser(t, db, 2, constants.RoleClient)

	credit := func() {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, _, err := svc.CreditInTx(tx, BalanceChangeInput{
				UserID:    2,
				Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
				EntryType: constants.BalanceEntryTypeCashback,
				Reference: "test:idempotent:2",
			})
			return err
		})
		if err != nil {
			t.Fatalf("credit failed: %v", err)
		}
	}
	credit()
	credit()

	if got := balanceOf(t, db, 2); !got.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("duplicate reference credited twice: %s", got)
	}
	var count int64
	if err := db.Model(&models.BalanceEntry{}).Where("reference = ?", "test:idempotent:2").Count(&count).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry, got %d", count)
	}
}

func TestBalanceDebitInsufficient(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createCashbackTestUser(t, db, 3, constants.RoleClient)
	seedTestBalance(t, db, 3, "5.00")

	err := db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.DebitInTx(tx, BalanceChangeInput{
			UserID:    3,
			Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("5.01")),
			EntryType: constants.BalanceEntryTypeWithdrawal,
			Reference: "test:overdraw:3",
		})
		return err
	})
	if err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}
	if got := balanceOf(t, db, 3); !got.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("balance changed on failed debit: %s", got)
	}
}

func TestBalanceChangeRequiresReference(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createCashbackTestUser(t, db, 4, constants.RoleClient)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.CreditInTx(tx, BalanceChangeInput{
			UserID:    4,
			Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1)),
			EntryType: constants.BalanceEntryTypeCashback,
			Reference: "   ",
		})
		return err
	})
	if err != ErrBalanceEntryCreateFailed {
		t.Fatalf("expected reference required, got: %v", err)
	}
}

func TestBalanceAdminAdjust(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createCashbackTestUser(t, db, 5, constants.RoleClient)

	if _, _, err := svc.AdminAdjust(5, models.NewMoneyFromDecimal(decimal.Zero), "test:adjust:zero", ""); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount for zero, got: %v", err)
	}

	balance, entry, err := svc.AdminAdjust(5, models.NewMoneyFromDecimal(decimal.NewFromInt(15)), "test:adjust:in", "bônus")
	if err != nil {
		t.Fatalf("positive adjust failed: %v", err)
	}
	if entry.Direction != constants.BalanceDirectionIn || entry.Type != constants.BalanceEntryTypeAdminAdjust {
		t.Fatalf("unexpected entry: %s/%s", entry.Direction, entry.Type)
	}
	if !balance.Balance.Decimal.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("unexpected balance: %s", balance.Balance.String())
	}

	balance, entry, err = svc.AdminAdjust(5, models.NewMoneyFromDecimal(decimal.NewFromInt(-6)), "test:adjust:out", "estorno")
	if err != nil {
		t.Fatalf("negative adjust failed: %v", err)
	}
	if entry.Direction != constants.BalanceDirectionOut {
		t.Fatalf("unexpected direction: %s", entry.Direction)
	}
	if !entry.Amount.Decimal.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("unexpected entry amount: %s", entry.Amount.String())
	}
	if !balance.Balance.Decimal.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("unexpected balance: %s", balance.Balance.String())
	}
}
