package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/platform/pkg/errors"
)

const (
	wizardOriginID      = "65b1f0c4a7e9d3128c000001"
	wizardDestinationID = "65b1f0c4a7e9d3128c000002"
	wizardTransportID   = "65b1f0c4a7e9d3128c000003"
	wizardProductID     = "65b1f0c4a7e9d3128c000004"
)

func assertWizardRejects(t *testing.T, step int, payload string) {
	t.Helper()
	err := ValidateWizardStep(step, []byte(payload))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestWizardRouteStep(t *testing.T) {
	payload := `{"originWarehouseId":"` + wizardOriginID + `","destinationWarehouseId":"` + wizardDestinationID + `"}`
	assert.NoError(t, ValidateWizardStep(1, []byte(payload)))
}

func TestWizardRouteStepSameWarehouse(t *testing.T) {
	payload := `{"originWarehouseId":"` + wizardOriginID + `","destinationWarehouseId":"` + wizardOriginID + `"}`
	assertWizardRejects(t, 1, payload)
}

func TestWizardRouteStepMalformedID(t *testing.T) {
	payload := `{"originWarehouseId":"not-an-id","destinationWarehouseId":"` + wizardDestinationID + `"}`
	assertWizardRejects(t, 1, payload)
}

func TestWizardRouteStepDeliveryBeforePickup(t *testing.T) {
	payload := `{
		"originWarehouseId":"` + wizardOriginID + `",
		"destinationWarehouseId":"` + wizardDestinationID + `",
		"scheduledPickupDate":"2026-09-02T08:00:00Z",
		"scheduledDeliveryDate":"2026-09-01T08:00:00Z"
	}`
	assertWizardRejects(t, 1, payload)
}

func TestWizardItemsStep(t *testing.T) {
	payload := `{"items":[{"productId":"` + wizardProductID + `","quantity":3,"unitPrice":10.10}]}`
	assert.NoError(t, ValidateWizardStep(2, []byte(payload)))
}

func TestWizardItemsStepEmpty(t *testing.T) {
	assertWizardRejects(t, 2, `{"items":[]}`)
	assertWizardRejects(t, 2, `{}`)
}

func TestWizardItemsStepZeroQuantity(t *testing.T) {
	payload := `{"items":[{"productId":"` + wizardProductID + `","quantity":0}]}`
	assertWizardRejects(t, 2, payload)
}

func TestWizardItemsStepBadCondition(t *testing.T) {
	payload := `{"items":[{"productId":"` + wizardProductID + `","quantity":1,"condition":"soggy"}]}`
	assertWizardRejects(t, 2, payload)
}

func TestWizardTransportStep(t *testing.T) {
	payload := `{"transportId":"` + wizardTransportID + `","priority":"urgent","temperatureMin":2,"temperatureMax":8}`
	assert.NoError(t, ValidateWizardStep(3, []byte(payload)))

	// Every field is optional
	assert.NoError(t, ValidateWizardStep(3, []byte(`{}`)))
}

func TestWizardTransportStepBadPriority(t *testing.T) {
	assertWizardRejects(t, 3, `{"priority":"whenever"}`)
}

func TestWizardTransportStepInvertedTemperatureRange(t *testing.T) {
	assertWizardRejects(t, 3, `{"temperatureMin":8,"temperatureMax":2}`)
}

func TestWizardTransportStepInsuredWithoutValue(t *testing.T) {
	assertWizardRejects(t, 3, `{"insured":true}`)
	assert.NoError(t, ValidateWizardStep(3, []byte(`{"insured":true,"insuranceValue":500}`)))
}

func TestWizardRejectsUnknownFields(t *testing.T) {
	payload := `{"originWarehouseId":"` + wizardOriginID + `","destinationWarehouseId":"` + wizardDestinationID + `","carrier":"acme"}`
	assertWizardRejects(t, 1, payload)
}

func TestWizardUnknownStep(t *testing.T) {
	assertWizardRejects(t, 0, `{}`)
	assertWizardRejects(t, 4, `{}`)
}
