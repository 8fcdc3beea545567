package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"crewdesk/internal/models"
)

type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id int) (*models.Product, error)
	GetByIDs(ids []int64) ([]*models.Product, error)
	List() ([]*models.Product, error)
	Update(product *models.Product) error
	Delete(id int) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) Create(product *models.Product) error {
	const q = `
		INSERT INTO products (name, description, price, owner_id)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`
	err := r.DB.QueryRow(q, product.Name, product.Description, product.Price, product.OwnerID).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("product create: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(id int) (*models.Product, error) {
	const q = `SELECT id, name, description, price, owner_id FROM products WHERE id = $1`
	p := &models.Product{}
	err := r.DB.QueryRow(q, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OwnerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product get: %w", err)
	}
	return p, nil
}

func (r *productRepository) GetByIDs(ids []int64) ([]*models.Product, error) {
	const q = `SELECT id, name, description, price, owner_id FROM products WHERE id = ANY($1)`
	rows, err := r.DB.Query(q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("product get by ids: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) List() ([]*models.Product, error) {
	rows, err := r.DB.Query(`SELECT id, name, description, price, owner_id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("product list: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	var res []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OwnerID); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *productRepository) Update(product *models.Product) error {
	const q = `UPDATE products SET name=$1, description=$2, price=$3 WHERE id=$4`
	_, err := r.DB.Exec(q, product.Name, product.Description, product.Price, product.ID)
	if err != nil {
		return fmt.Errorf("product update: %w", err)
	}
	return nil
}

func (r *productRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM products WHERE id=$1`, id)
	return err
}
