package domain

import (
	"errors"
	"testing"
)

func validInput() *CreateOrderInput {
	return &CreateOrderInput{
		CustomerName:  "Олена",
		CustomerPhone: "+380991234567",
		Address: AddressParts{
			City:     "Київ",
			Street:   "Хрещатик",
			Building: "12",
		},
		PaymentMethod: PaymentMethodCash,
		Items: []OrderLine{
			{Name: "Маргарита", Price: 499, Quantity: 1},
		},
		Subtotal:    499,
		DeliveryFee: 199,
	}
}

func TestCreateOrderInput_Validate(t *testing.T) {
	t.Run("accepts a complete input", func(t *testing.T) {
		if err := validInput().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		field  string
	}{
		{"missing customer name", func(in *CreateOrderInput) { in.CustomerName = " " }, "customerName"},
		{"missing phone", func(in *CreateOrderInput) { in.CustomerPhone = "" }, "customerPhone"},
		{"missing city", func(in *CreateOrderInput) { in.Address.City = "" }, "addressParts.city"},
		{"missing street", func(in *CreateOrderInput) { in.Address.Street = "" }, "addressParts.street"},
		{"missing building", func(in *CreateOrderInput) { in.Address.Building = "" }, "addressParts.building"},
		{"empty items", func(in *CreateOrderInput) { in.Items = nil }, "items"},
		{"unknown payment method", func(in *CreateOrderInput) { in.PaymentMethod = "crypto" }, "paymentMethod"},
		{"nameless line", func(in *CreateOrderInput) { in.Items[0].Name = "" }, "items.name"},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, "items.quantity"},
		{"negative quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = -2 }, "items.quantity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(in)

			err := in.Validate()
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, validationErr.Field)
			}
		})
	}
}

func TestAddressParts_Compose(t *testing.T) {
	t.Run("joins all parts in fixed order", func(t *testing.T) {
		a := AddressParts{
			City:      "Київ",
			Street:    "Хрещатик",
			Building:  "12",
			Apartment: "4",
			Entrance:  "2",
			Floor:     "3",
		}
		want := "Київ, вул. Хрещатик, буд. 12, кв. 4, під'їзд 2, поверх 3"
		if got := a.Compose(); got != want {
			t.Errorf("Compose() = %q, want %q", got, want)
		}
	})

	t.Run("skips empty optional parts", func(t *testing.T) {
		a := AddressParts{City: "Київ", Street: "Хрещатик", Building: "12"}
		want := "Київ, вул. Хрещатик, буд. 12"
		if got := a.Compose(); got != want {
			t.Errorf("Compose() = %q, want %q", got, want)
		}
	})
}

func TestOrderLinesTotal(t *testing.T) {
	order := &Order{
		Items: []OrderLine{
			{Name: "Маргарита", Price: 499, Quantity: 1},
			{Name: "Кола", Price: 99, Quantity: 2},
		},
	}
	if got := order.LinesTotal(); got != 697 {
		t.Errorf("LinesTotal() = %d, want 697", got)
	}
}
