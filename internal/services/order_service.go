package services

import (
	"errors"
	"fmt"
	"log"

	"crewdesk/internal/models"
	"crewdesk/internal/pdf"
	"crewdesk/internal/repositories"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	invoices pdf.Generator
	telegram *TelegramService
}

func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	invoices pdf.Generator,
	telegram *TelegramService,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		invoices: invoices,
		telegram: telegram,
	}
}

// Create checks every referenced product exists, sums the total and stores
// the order as pending. The staff alert is best-effort and never fails the
// order.
func (s *OrderService) Create(userID int, productIDs []int64) (*models.Order, error) {
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("order needs at least one product")
	}
	products, err := s.products.GetByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		found[int64(p.ID)] = p
	}
	var total float64
	for _, id := range productIDs {
		p, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		total += p.Price
	}

	order := &models.Order{
		UserID:     userID,
		ProductIDs: productIDs,
		Total:      total,
		Status:     models.OrderPending,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	log.Printf("[order][create] id=%d user_id=%d total=%.2f", order.ID, userID, total)

	if err := s.telegram.NotifyStaff(fmt.Sprintf(
		"New order #%d: %d item(s), total %.2f", order.ID, len(productIDs), total,
	)); err != nil {
		log.Printf("[order][create] staff alert failed for order %d: %v", order.ID, err)
	}
	return order, nil
}

func (s *OrderService) Get(id int) (*models.Order, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) ListByUser(userID int) ([]*models.Order, error) {
	return s.orders.ListByUser(userID)
}

func (s *OrderService) UpdateStatus(id int, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}
	o, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !canTransition(o.Status, status) {
		return nil, fmt.Errorf("order %d cannot go from %s to %s", id, o.Status, status)
	}
	if err := s.orders.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

func (s *OrderService) Delete(id int) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.orders.Delete(id)
}

// Invoice renders a PDF for the order and returns its public path.
func (s *OrderService) Invoice(id int) (string, error) {
	order, err := s.Get(id)
	if err != nil {
		return "", err
	}
	user, err := s.users.GetByID(order.UserID)
	if err != nil {
		return "", err
	}
	customer := "Unknown customer"
	if user != nil {
		customer = user.Name
	}
	products, err := s.products.GetByIDs(order.ProductIDs)
	if err != nil {
		return "", err
	}
	return s.invoices.GenerateInvoice(pdf.InvoiceDataFromOrder(order, customer, products))
}
