// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mmeshcher/parking-system/internal/model"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrClassFull возвращается, если все места категории заняты.
var (
	ErrClassFull = errors.New("vehicle class is at capacity")
	// ErrVehicleAlreadyParked возвращается при попытке въезда транспортного
	// средства, у которого уже есть активная запись.
	ErrVehicleAlreadyParked = errors.New("vehicle is already parked")
	// ErrVehicleNotParked возвращается, если активная запись по номеру не найдена.
	ErrVehicleNotParked = errors.New("vehicle is not parked")
	// ErrAlreadyCheckedOut возвращается, если условное обновление при выезде
	// не затронуло ни одной строки: запись уже переведена в статус out.
	ErrAlreadyCheckedOut = errors.New("vehicle is already checked out")
	// ErrRecordNotFound возвращается, если запись с указанным идентификатором не существует.
	ErrRecordNotFound = errors.New("parking record not found")
)

// PostgresRepository предоставляет доступ к хранилищу парковочных записей в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Повторяем только конфликты сериализации и дедлоки: одновременные
		// въезды одной категории конкурируют за одну строку vehicle_classes.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateRecord создаёт запись о въезде. Проверка вместимости и вставка
// выполняются в одной транзакции под блокировкой строки категории, поэтому
// одновременные въезды одной категории не превышают её вместимость.
func (r *PostgresRepository) CreateRecord(ctx context.Context, vehicleNumber, ownerName string, class model.VehicleClass, capacity int) (*model.ParkingRecord, error) {
	var rec *model.ParkingRecord

	err := r.withRetry(ctx, func() error {
		created, err := r.createRecordTx(ctx, vehicleNumber, ownerName, class, capacity)
		if err != nil {
			return err
		}
		rec = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *PostgresRepository) createRecordTx(ctx context.Context, vehicleNumber, ownerName string, class model.VehicleClass, capacity int) (*model.ParkingRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку категории, чтобы сериализовать проверку вместимости
	// относительно других въездов той же категории.
	var dummy int
	err = tx.QueryRow(ctx,
		`SELECT 1 FROM vehicle_classes WHERE name = $1 FOR UPDATE`,
		string(class),
	).Scan(&dummy)
	if err != nil {
		return nil, fmt.Errorf("lock vehicle class: %w", err)
	}

	var occupied int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM parking_records WHERE vehicle_class = $1 AND status = $2`,
		string(class), string(model.RecordStatusIn),
	).Scan(&occupied)
	if err != nil {
		return nil, fmt.Errorf("count occupied: %w", err)
	}

	if occupied >= capacity {
		return nil, fmt.Errorf("%w: %s", ErrClassFull, class)
	}

	rec := &model.ParkingRecord{
		VehicleNumber: vehicleNumber,
		OwnerName:     ownerName,
		Class:         class,
		Status:        model.RecordStatusIn,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO parking_records (vehicle_number, owner_name, vehicle_class)
		 VALUES ($1, $2, $3)
		 RETURNING id, entry_time`,
		vehicleNumber, ownerName, string(class),
	).Scan(&rec.ID, &rec.EntryTime)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrVehicleAlreadyParked, vehicleNumber)
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return rec, nil
}

// CompleteRecord переводит активную запись в статус out условным обновлением.
// Если запись уже переведена параллельным выездом, возвращает ErrAlreadyCheckedOut.
func (r *PostgresRepository) CompleteRecord(ctx context.Context, vehicleNumber string, exitTime time.Time, feeCents int64) error {
	return r.withRetry(ctx, func() error {
		cmdTag, err := r.pool.Exec(ctx,
			`UPDATE parking_records
			 SET status = $2, exit_time = $3, final_fee = $4::numeric / 100
			 WHERE vehicle_number = $1 AND status = $5`,
			vehicleNumber, string(model.RecordStatusOut), exitTime, feeCents, string(model.RecordStatusIn),
		)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyCheckedOut, vehicleNumber)
		}

		return nil
	})
}

// CountOccupiedByClass возвращает количество активных записей по категориям.
// Категории без активных записей в результате отсутствуют.
func (r *PostgresRepository) CountOccupiedByClass(ctx context.Context) (map[model.VehicleClass]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT vehicle_class, COUNT(*)
		 FROM parking_records
		 WHERE status = $1
		 GROUP BY vehicle_class`,
		string(model.RecordStatusIn),
	)
	if err != nil {
		return nil, fmt.Errorf("count occupied by class: %w", err)
	}
	defer rows.Close()

	res := make(map[model.VehicleClass]int)
	for rows.Next() {
		var class string
		var count int
		if err := rows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("scan occupancy: %w", err)
		}
		res[model.VehicleClass(class)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

const recordColumns = `id, vehicle_number, owner_name, vehicle_class, entry_time, exit_time, status, (final_fee * 100)::bigint`

func scanRecord(row pgx.Row) (*model.ParkingRecord, error) {
	var (
		rec      model.ParkingRecord
		class    string
		status   string
		exitTime *time.Time
		feeCents *int64
	)

	err := row.Scan(&rec.ID, &rec.VehicleNumber, &rec.OwnerName, &class, &rec.EntryTime, &exitTime, &status, &feeCents)
	if err != nil {
		return nil, err
	}

	rec.Class = model.VehicleClass(class)
	rec.Status = model.RecordStatus(status)
	rec.ExitTime = exitTime
	rec.FinalFee = feeCents

	return &rec, nil
}

// FindLatestByVehicleNumber возвращает самую свежую запись по номеру
// независимо от статуса. Если записей нет, возвращает nil без ошибки.
func (r *PostgresRepository) FindLatestByVehicleNumber(ctx context.Context, vehicleNumber string) (*model.ParkingRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM parking_records
		 WHERE vehicle_number = $1
		 ORDER BY entry_time DESC
		 LIMIT 1`,
		vehicleNumber,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest record: %w", err)
	}

	return rec, nil
}

// FindOccupiedByVehicleNumber возвращает активную запись по номеру.
// Активная запись единственна благодаря частичному уникальному индексу.
func (r *PostgresRepository) FindOccupiedByVehicleNumber(ctx context.Context, vehicleNumber string) (*model.ParkingRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM parking_records
		 WHERE vehicle_number = $1 AND status = $2`,
		vehicleNumber, string(model.RecordStatusIn),
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrVehicleNotParked, vehicleNumber)
		}
		return nil, fmt.Errorf("find occupied record: %w", err)
	}

	return rec, nil
}

// GetRecordByID возвращает запись по её идентификатору.
func (r *PostgresRepository) GetRecordByID(ctx context.Context, id int64) (*model.ParkingRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM parking_records WHERE id = $1`,
		id,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	return rec, nil
}

// RecordFilter задаёт условия выборки записей.
type RecordFilter struct {
	Status        *model.RecordStatus
	VehicleNumber string
}

// ListRecords возвращает записи по фильтру в порядке убывания времени въезда.
func (r *PostgresRepository) ListRecords(ctx context.Context, filter RecordFilter) ([]model.ParkingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM parking_records`
	var (
		conds []string
		args  []any
	)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.VehicleNumber != "" {
		args = append(args, filter.VehicleNumber)
		conds = append(conds, fmt.Sprintf("vehicle_number = $%d", len(args)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY entry_time DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	var res []model.ParkingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		res = append(res, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
