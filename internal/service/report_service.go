package service

import (
	"go-retail-pos/internal/repository"
)

type ReportService interface {
	// SalesReport rolls up completed bills. Non-admin callers only ever see
	// their own sales regardless of the requested filter.
	SalesReport(actor Actor, filter repository.ReportFilter) (*repository.SalesReport, error)
	DashboardStats(actor Actor) (*repository.DashboardStats, error)
}

type reportService struct {
	billRepo repository.BillRepository
}

func NewReportService(billRepo repository.BillRepository) ReportService {
	return &reportService{billRepo: billRepo}
}

func (s *reportService) SalesReport(actor Actor, filter repository.ReportFilter) (*repository.SalesReport, error) {
	if !actor.IsAdmin() {
		id := actor.EmployeeID
		filter.EmployeeID = &id
	}
	return s.billRepo.SalesReport(filter)
}

func (s *reportService) DashboardStats(actor Actor) (*repository.DashboardStats, error) {
	if actor.IsAdmin() {
		return s.billRepo.DashboardStats(nil)
	}
	id := actor.EmployeeID
	return s.billRepo.DashboardStats(&id)
}
