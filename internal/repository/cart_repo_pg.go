package repository

import (
	"context"
	"errors"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository interface {
	// GetOrCreate returns the user's cart, creating an empty one if none
	// exists. Safe under concurrent first access: the insert races on the
	// unique user_id constraint and the loser reads the winner's row.
	GetOrCreate(ctx context.Context, userID string) (*domain.ShoppingCart, bool, error)
	// Create inserts a cart and fails with ErrConflict when the user
	// already has one.
	Create(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	GetByUser(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	// Delete removes the user's cart; line items go with it (ON DELETE CASCADE).
	Delete(ctx context.Context, userID string) error
	AddFlight(ctx context.Context, cartID, flightID int64, quantity int) (*domain.ShoppingCartFlight, error)
	AddRental(ctx context.Context, cartID, rentalID int64, rentalDays int) (*domain.ShoppingCartRental, error)
	// ListFlightItems returns the cart's flight line items in insertion order.
	ListFlightItems(ctx context.Context, cartID int64) ([]domain.ShoppingCartFlight, error)
	ListRentalItems(ctx context.Context, cartID int64) ([]domain.ShoppingCartRental, error)
}

type PGCartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) CartRepository {
	return &PGCartRepository{db: db}
}

func (r *PGCartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.ShoppingCart, bool, error) {
	cart := &domain.ShoppingCart{UserID: userID}
	row := r.db.QueryRow(ctx, `INSERT INTO shopping_carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, created_at`, userID)

	err := row.Scan(&cart.ID, &cart.CreatedAt)
	if err == nil {
		return cart, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := r.GetByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PGCartRepository) Create(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	cart := &domain.ShoppingCart{UserID: userID}
	row := r.db.QueryRow(ctx, `INSERT INTO shopping_carts (user_id) VALUES ($1) RETURNING id, created_at`, userID)
	if err := row.Scan(&cart.ID, &cart.CreatedAt); err != nil {
		return nil, translatePGError(err)
	}
	return cart, nil
}

func (r *PGCartRepository) GetByUser(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, created_at FROM shopping_carts WHERE user_id=$1`, userID)
	var cart domain.ShoppingCart
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (r *PGCartRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM shopping_carts WHERE user_id=$1`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGCartRepository) AddFlight(ctx context.Context, cartID, flightID int64, quantity int) (*domain.ShoppingCartFlight, error) {
	item := &domain.ShoppingCartFlight{CartID: cartID, FlightID: flightID, Quantity: quantity}
	row := r.db.QueryRow(ctx, `INSERT INTO shopping_cart_flights (cart_id, flight_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, cartID, flightID, quantity)
	if err := row.Scan(&item.ID, &item.CreatedAt); err != nil {
		return nil, translatePGError(err)
	}
	return item, nil
}

func (r *PGCartRepository) AddRental(ctx context.Context, cartID, rentalID int64, rentalDays int) (*domain.ShoppingCartRental, error) {
	item := &domain.ShoppingCartRental{CartID: cartID, RentalID: rentalID, RentalDays: rentalDays}
	row := r.db.QueryRow(ctx, `INSERT INTO shopping_cart_rentals (cart_id, rental_id, rental_days)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, cartID, rentalID, rentalDays)
	if err := row.Scan(&item.ID, &item.CreatedAt); err != nil {
		return nil, translatePGError(err)
	}
	return item, nil
}

func (r *PGCartRepository) ListFlightItems(ctx context.Context, cartID int64) ([]domain.ShoppingCartFlight, error) {
	rows, err := r.db.Query(ctx, `SELECT id, cart_id, flight_id, quantity, created_at FROM shopping_cart_flights WHERE cart_id=$1 ORDER BY id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ShoppingCartFlight, 0)
	for rows.Next() {
		var item domain.ShoppingCartFlight
		if err := rows.Scan(&item.ID, &item.CartID, &item.FlightID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PGCartRepository) ListRentalItems(ctx context.Context, cartID int64) ([]domain.ShoppingCartRental, error) {
	rows, err := r.db.Query(ctx, `SELECT id, cart_id, rental_id, rental_days, created_at FROM shopping_cart_rentals WHERE cart_id=$1 ORDER BY id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ShoppingCartRental, 0)
	for rows.Next() {
		var item domain.ShoppingCartRental
		if err := rows.Scan(&item.ID, &item.CartID, &item.RentalID, &item.RentalDays, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

var _ CartRepository = (*PGCartRepository)(nil)
