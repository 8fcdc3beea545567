package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"crewdesk/internal/models"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id int) (*models.Order, error)
	ListByUser(userID int) ([]*models.Order, error)
	UpdateStatus(id int, status models.OrderStatus) error
	Delete(id int) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	const q = `
		INSERT INTO orders (user_id, product_ids, total, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		order.UserID,
		pq.Array(order.ProductIDs),
		order.Total,
		string(order.Status),
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("order create: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(id int) (*models.Order, error) {
	const q = `SELECT id, user_id, product_ids, total, status, created_at FROM orders WHERE id = $1`
	o := &models.Order{}
	var status string
	err := r.DB.QueryRow(q, id).Scan(&o.ID, &o.UserID, pq.Array(&o.ProductIDs), &o.Total, &status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order get: %w", err)
	}
	o.Status = models.OrderStatus(status)
	return o, nil
}

func (r *orderRepository) ListByUser(userID int) ([]*models.Order, error) {
	const q = `
		SELECT id, user_id, product_ids, total, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.Query(q, userID)
	if err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	defer rows.Close()

	var res []*models.Order
	for rows.Next() {
		o := &models.Order{}
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, pq.Array(&o.ProductIDs), &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = models.OrderStatus(status)
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r *orderRepository) UpdateStatus(id int, status models.OrderStatus) error {
	_, err := r.DB.Exec(`UPDATE orders SET status=$1 WHERE id=$2`, string(status), id)
	return err
}

func (r *orderRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM orders WHERE id=$1`, id)
	return err
}
