package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsdash/platform/pkg/errors"
	"github.com/opsdash/platform/pkg/middleware"
)

// The shipment creation form is a multi-step wizard on the client. Each step
// posts its partial payload for server-side validation before the client lets
// the user advance; the final submit goes through CreateShipment.

// WizardRouteStep is step 1: origin, destination and schedule
type WizardRouteStep struct {
	OriginWarehouseID      string     `json:"originWarehouseId" validate:"required,object_id"`
	DestinationWarehouseID string     `json:"destinationWarehouseId" validate:"required,object_id,nefield=OriginWarehouseID"`
	ScheduledPickupDate    *time.Time `json:"scheduledPickupDate,omitempty"`
	ScheduledDeliveryDate  *time.Time `json:"scheduledDeliveryDate,omitempty"`
}

// WizardItemsStep is step 2: the product lines
type WizardItemsStep struct {
	Items []ShipmentItemInput `json:"items" validate:"required,min=1,dive"`
}

// WizardTransportStep is step 3: vehicle, priority and cargo constraints
type WizardTransportStep struct {
	TransportID    string   `json:"transportId,omitempty" validate:"omitempty,object_id"`
	Priority       string   `json:"priority,omitempty" validate:"omitempty,shipment_priority"`
	TemperatureMin *float64 `json:"temperatureMin,omitempty"`
	TemperatureMax *float64 `json:"temperatureMax,omitempty"`
	Insured        bool     `json:"insured,omitempty"`
	InsuranceValue float64  `json:"insuranceValue,omitempty" validate:"gte=0"`
}

// WizardStepCount is the number of steps in the shipment creation wizard
const WizardStepCount = 3

// wizardValidators maps step index (1-based) to its payload validator
var wizardValidators = map[int]func([]byte) error{
	1: validateWizardStep[WizardRouteStep],
	2: validateWizardStep[WizardItemsStep],
	3: validateWizardStep[WizardTransportStep],
}

// ValidateWizardStep validates the JSON payload for one wizard step
func ValidateWizardStep(step int, payload []byte) error {
	validate, ok := wizardValidators[step]
	if !ok {
		return errors.ErrValidation(fmt.Sprintf("unknown wizard step %d: steps run 1..%d", step, WizardStepCount))
	}
	return validate(payload)
}

func validateWizardStep[T any](payload []byte) error {
	var step T
	if err := unmarshalStrict(payload, &step); err != nil {
		return errors.ErrValidation(err.Error())
	}

	if err := middleware.GetValidator().Struct(&step); err != nil {
		return errors.ErrValidation(err.Error())
	}

	// Cross-field checks the tag language cannot express
	if v, ok := any(&step).(interface{ crossCheck() error }); ok {
		if err := v.crossCheck(); err != nil {
			return errors.ErrValidation(err.Error())
		}
	}

	return nil
}

func unmarshalStrict(payload []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *WizardRouteStep) crossCheck() error {
	if s.ScheduledPickupDate != nil && s.ScheduledDeliveryDate != nil &&
		s.ScheduledDeliveryDate.Before(*s.ScheduledPickupDate) {
		return fmt.Errorf("scheduled delivery must not precede scheduled pickup")
	}
	return nil
}

func (s *WizardTransportStep) crossCheck() error {
	if s.TemperatureMin != nil && s.TemperatureMax != nil && *s.TemperatureMax < *s.TemperatureMin {
		return fmt.Errorf("temperature max must not be below temperature min")
	}
	if s.Insured && s.InsuranceValue <= 0 {
		return fmt.Errorf("insured shipments require a positive insurance value")
	}
	return nil
}
