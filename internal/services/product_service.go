package services

import (
	"errors"

	"crewdesk/internal/models"
	"crewdesk/internal/repositories"
)

var ErrProductNotFound = errors.New("product not found")

type ProductService struct {
	repo repositories.ProductRepository
}

func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) Create(ownerID int, req *models.ProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Get(id int) (*models.Product, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) List() ([]*models.Product, error) {
	return s.repo.List()
}

func (s *ProductService) Update(id int, req *models.ProductRequest) (*models.Product, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(id int) error {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}
