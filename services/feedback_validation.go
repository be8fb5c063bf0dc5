package services

import (
	"context"

	"device-feedback-server/models"
)

// ResolvedEntities are the entities a submission references, handed to the
// persistence stage so nothing is fetched twice.
type ResolvedEntities struct {
	Employee *models.Employee
	Merchant *models.Merchant
	Device   *models.Device
}

// ValidationPipeline checks that a submission's references exist and that the
// device is provisioned to the merchant. It never writes.
type ValidationPipeline struct {
	employees EmployeeStore
	merchants MerchantStore
	devices   DeviceStore
	links     LinkStore
}

func NewValidationPipeline(employees EmployeeStore, merchants MerchantStore, devices DeviceStore, links LinkStore) *ValidationPipeline {
	return &ValidationPipeline{
		employees: employees,
		merchants: merchants,
		devices:   devices,
		links:     links,
	}
}

// Validate runs employee, merchant, device and link checks in that order and
// stops at the first failure.
func (p *ValidationPipeline) Validate(ctx context.Context, employeeID, merchantID, deviceID uint) (*ResolvedEntities, error) {
	employee, err := p.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, &PersistenceError{Op: "find employee", Err: err}
	}
	if employee == nil {
		return nil, &NotFoundError{Kind: EntityEmployee, ID: employeeID}
	}

	merchant, err := p.merchants.FindByID(ctx, merchantID)
	if err != nil {
		return nil, &PersistenceError{Op: "find merchant", Err: err}
	}
	if merchant == nil {
		return nil, &NotFoundError{Kind: EntityMerchant, ID: merchantID}
	}

	device, err := p.devices.FindByID(ctx, deviceID)
	if err != nil {
		return nil, &PersistenceError{Op: "find device", Err: err}
	}
	if device == nil {
		return nil, &NotFoundError{Kind: EntityDevice, ID: deviceID}
	}

	assigned, err := p.links.Exists(ctx, merchantID, deviceID)
	if err != nil {
		return nil, &PersistenceError{Op: "check merchant device link", Err: err}
	}
	if !assigned {
		return nil, &BusinessRuleError{
			Rule:       RuleDeviceNotAssignedToMerchant,
			DeviceID:   deviceID,
			MerchantID: merchantID,
		}
	}

	return &ResolvedEntities{Employee: employee, Merchant: merchant, Device: device}, nil
}
