package balance_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance"
	balanceerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance/errors"
)

type balanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service balance.Service
	repo    *fakeBalanceRepository
}

func setupBalanceServiceTest(t *testing.T) *balanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeBalanceRepository{}
	svc := balance.NewService(db, repo)

	return &balanceServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestBalanceService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	employeeID := uuid.New()

	t.Run("provisions a ledger with an opening accrual", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		var created *balance.LeaveBalance
		var openingTxn *balance.BalanceTransaction
		deps.repo.createFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			created = b
			return nil
		}
		deps.repo.createTransactionFn = func(ctx context.Context, txn *balance.BalanceTransaction) error {
			openingTxn = txn
			return nil
		}

		resp, err := deps.service.Create(ctx, actorID, balance.CreateBalanceRequest{
			EmployeeID: employeeID.String(),
			LeaveType:  "ANNUAL",
			Available:  "12.5",
		})

		assert.NoError(t, err)
		assert.True(t, dec(resp.Available).Equal(dec("12.5")))
		assert.True(t, dec(resp.Held).IsZero())
		assert.True(t, created.Held.IsZero())
		assert.True(t, created.Consumed.IsZero())

		assert.NotNil(t, openingTxn)
		assert.Equal(t, balance.TxKindAccrual, openingTxn.Kind)
		assert.True(t, openingTxn.Amount.Equal(dec("12.5")))
		assert.Nil(t, openingTxn.RequestID, "provisioning is not tied to a leave request")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("a zero opening balance writes no transaction", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		txnWritten := false
		deps.repo.createTransactionFn = func(ctx context.Context, _ *balance.BalanceTransaction) error {
			txnWritten = true
			return nil
		}

		_, err := deps.service.Create(ctx, actorID, balance.CreateBalanceRequest{
			EmployeeID: employeeID.String(),
			LeaveType:  "SICK",
			Available:  "0.0",
		})

		assert.NoError(t, err)
		assert.False(t, txnWritten)
	})

	t.Run("maps the unique constraint to already-exists", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.createFn = func(ctx context.Context, _ *balance.LeaveBalance) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_leave_balances_employee_type"}
		}

		_, err := deps.service.Create(ctx, actorID, balance.CreateBalanceRequest{
			EmployeeID: employeeID.String(),
			LeaveType:  "ANNUAL",
			Available:  "10.0",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects a negative or off-grid opening balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		for _, available := range []string{"-1.0", "3.3"} {
			_, err := deps.service.Create(ctx, actorID, balance.CreateBalanceRequest{
				EmployeeID: employeeID.String(),
				LeaveType:  "ANNUAL",
				Available:  available,
			})
			assert.ErrorIs(t, err, balanceerrors.ErrInvalidQuantity, "available %s", available)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestBalanceService_Accrue(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	employeeID := uuid.New()

	t.Run("grows only the available bucket and records an accrual", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		seed := seededBalance(employeeID, "5.0", "2.0", "3.0")
		var savedTxn *balance.BalanceTransaction
		deps.repo.findForUpdateFn = func(ctx context.Context, _ uuid.UUID, _ string) (*balance.LeaveBalance, error) {
			return seed, nil
		}
		deps.repo.createTransactionFn = func(ctx context.Context, txn *balance.BalanceTransaction) error {
			savedTxn = txn
			return nil
		}

		resp, err := deps.service.Accrue(ctx, actorID, balance.AccrueRequest{
			EmployeeID: employeeID.String(),
			LeaveType:  "ANNUAL",
			Quantity:   "1.5",
		})

		assert.NoError(t, err)
		assert.True(t, dec(resp.Available).Equal(dec("6.5")))
		assert.True(t, dec(resp.Held).Equal(dec("2.0")))
		assert.True(t, dec(resp.Consumed).Equal(dec("3.0")))
		assert.Equal(t, balance.TxKindAccrual, savedTxn.Kind)
		assert.True(t, savedTxn.Amount.Equal(dec("1.5")))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("fails when the ledger does not exist", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Accrue(ctx, actorID, balance.AccrueRequest{
			EmployeeID: employeeID.String(),
			LeaveType:  "ANNUAL",
			Quantity:   "1.0",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestBalanceService_GetByEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a malformed employee id", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetByEmployee(ctx, "nope")

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidEmployeeID)
	})

	t.Run("returns every ledger of the employee", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New()
		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) ([]balance.LeaveBalance, error) {
			return []balance.LeaveBalance{
				*seededBalance(employeeID, "10.0", "0.0", "0.0"),
				*seededBalance(employeeID, "5.0", "1.0", "2.0"),
			}, nil
		}

		resp, err := deps.service.GetByEmployee(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
	})
}
