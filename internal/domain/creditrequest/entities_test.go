package creditrequest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"credapp/internal/domain/client"
)

type fixedRand struct {
	ints   []int
	floats []float64
}

func (f *fixedRand) IntN(n int) int {
	v := f.ints[0]
	f.ints = f.ints[1:]
	if v >= n {
		panic("fixedRand: value out of range")
	}
	return v
}

func (f *fixedRand) Float64() float64 {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func TestInstallment(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		months int
		want   string
	}{
		{"10000", "0.02", 12, "945.6"},
		{"5000", "0.015", 6, "877.63"},
		{"1200", "0", 12, "100"},
		{"1000", "0.05", 0, "0"},
	}
	for _, tt := range tests {
		got := Installment(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.rate), tt.months)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Installment(%s, %s, %d) = %s, want %s", tt.amount, tt.rate, tt.months, got, tt.want)
		}
	}
}

func TestNewRequest(t *testing.T) {
	c := client.Client{ID: 42, Name: "Ana Lima", NationalID: "123.456.789-00", Occupation: "Engenheira", Age: 33, AnnualSalary: 60000}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	r := NewRequest(c, &fixedRand{ints: []int{5000, 6}, floats: []float64{0.5}}, now)

	if r.ClientID != 42 || r.Name != "Ana Lima" || r.Occupation != "Engenheira" || r.Age != 33 {
		t.Fatalf("client snapshot not copied: %+v", r)
	}
	if !r.LoanAmount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("amount = %s", r.LoanAmount)
	}
	if r.Months != 12 {
		t.Fatalf("months = %d", r.Months)
	}
	// 0.015 + 0.035*0.5 = 0.0325
	if !r.MonthlyRate.Equal(decimal.RequireFromString("0.0325")) {
		t.Fatalf("rate = %s", r.MonthlyRate)
	}
	if !r.Installment.Equal(Installment(r.LoanAmount, r.MonthlyRate, r.Months)) {
		t.Fatalf("installment = %s", r.Installment)
	}
	if r.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at must be UTC, got %v", r.CreatedAt.Location())
	}
}

func TestNewRequest_Bounds(t *testing.T) {
	low := NewRequest(client.Client{ID: 1}, &fixedRand{ints: []int{0, 0}, floats: []float64{0}}, time.Now())
	if !low.LoanAmount.Equal(decimal.NewFromInt(MinLoanAmount)) || low.Months != MinMonths || !low.MonthlyRate.Equal(minMonthlyRate) {
		t.Fatalf("unexpected lower bound: %+v", low)
	}

	high := NewRequest(client.Client{ID: 1}, &fixedRand{ints: []int{LoanAmountRange - 1, MonthsRange - 1}, floats: []float64{0.99999999}}, time.Now())
	if !high.LoanAmount.Equal(decimal.NewFromInt(19999)) || high.Months != 23 {
		t.Fatalf("unexpected upper bound: %+v", high)
	}
	if high.MonthlyRate.GreaterThan(decimal.RequireFromString("0.05")) {
		t.Fatalf("rate above 5%%: %s", high.MonthlyRate)
	}
}
