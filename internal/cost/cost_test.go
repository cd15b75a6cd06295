package cost

import (
	"testing"

	"github.com/zulandar/carscout/internal/config"
	"github.com/zulandar/carscout/internal/db"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

func defaultFees() config.FeesConfig {
	return config.FeesConfig{
		TaxRate:           0.13,
		DealerDocFee:      499,
		RegulatoryFee:     10,
		StewardshipFee:    20,
		RegistrationBase:  32,
		NewPlateCost:      59,
		PlateTransferCost: 20,
	}
}

func TestCompute_DealerPlateTransfer(t *testing.T) {
	b := Compute(Inputs{
		AskingPrice:         15000,
		SellerType:          "dealer",
		IncludeRegistration: true,
		TransferPlates:      true,
		Budget:              18000,
		Fees:                defaultFees(),
	})

	if b.EffectivePrice != 15000 {
		t.Errorf("EffectivePrice = %v, want 15000", b.EffectivePrice)
	}
	// Doc and stewardship fees are taxable, the regulatory fee is not.
	// round((15000 + 499 + 20) * 0.13) = round(2017.47) = 2017
	if b.TaxAmount != 2017 {
		t.Errorf("TaxAmount = %v, want 2017", b.TaxAmount)
	}
	if b.RegistrationCost != 52 {
		t.Errorf("RegistrationCost = %v, want 52 (base 32 + transfer 20)", b.RegistrationCost)
	}
	// 15000 + 529 fees + 2017 tax + 52 registration
	if b.TotalCost != 17598 {
		t.Errorf("TotalCost = %v, want 17598", b.TotalCost)
	}
	if !b.WithinBudget {
		t.Error("WithinBudget = false, want true")
	}
	if b.Remaining != 402 {
		t.Errorf("Remaining = %v, want 402", b.Remaining)
	}
}

func TestCompute_NewPlates(t *testing.T) {
	b := Compute(Inputs{
		AskingPrice:         10000,
		SellerType:          "private",
		IncludeRegistration: true,
		Budget:              18000,
		Fees:                defaultFees(),
	})
	if b.RegistrationCost != 91 {
		t.Errorf("RegistrationCost = %v, want 91 (base 32 + new plate 59)", b.RegistrationCost)
	}
}

func TestCompute_PrivateSellerNoFees(t *testing.T) {
	b := Compute(Inputs{
		AskingPrice: 10000,
		SellerType:  "private",
		Budget:      18000,
		Fees:        defaultFees(),
	})
	if len(b.Fees) != 0 {
		t.Errorf("Fees = %v, want empty for private seller", b.Fees)
	}
	// round(10000 * 0.13) = 1300
	if b.TaxAmount != 1300 {
		t.Errorf("TaxAmount = %v, want 1300", b.TaxAmount)
	}
	if b.TotalCost != 11300 {
		t.Errorf("TotalCost = %v, want 11300", b.TotalCost)
	}
}

func TestCompute_NegotiatedPriceWins(t *testing.T) {
	negotiated := 13500.0
	b := Compute(Inputs{
		AskingPrice:     15000,
		NegotiatedPrice: &negotiated,
		SellerType:      "private",
		Budget:          18000,
		Fees:            defaultFees(),
	})
	if b.EffectivePrice != 13500 {
		t.Errorf("EffectivePrice = %v, want negotiated 13500", b.EffectivePrice)
	}
	if b.AskingPrice != 15000 {
		t.Errorf("AskingPrice = %v, want 15000 preserved", b.AskingPrice)
	}
}

func TestCompute_FeeOverrides(t *testing.T) {
	b := Compute(Inputs{
		AskingPrice:  15000,
		SellerType:   "dealer",
		FeeOverrides: map[string]float64{FeeDocumentation: 299},
		Budget:       18000,
		Fees:         defaultFees(),
	})
	if b.Fees[FeeDocumentation] != 299 {
		t.Errorf("documentation fee = %v, want override 299", b.Fees[FeeDocumentation])
	}
	if b.Fees[FeeRegulatory] != 10 {
		t.Errorf("regulatory fee = %v, want default 10", b.Fees[FeeRegulatory])
	}
}

func TestCompute_BudgetFlip(t *testing.T) {
	in := Inputs{
		AskingPrice:         15000,
		SellerType:          "dealer",
		IncludeRegistration: true,
		TransferPlates:      true,
		Budget:              18000,
		Fees:                defaultFees(),
	}
	under := Compute(in)
	if !under.WithinBudget {
		t.Fatal("expected within budget at 15000")
	}

	in.AskingPrice = 18000
	over := Compute(in)
	if over.WithinBudget {
		t.Error("expected over budget at 18000 asking")
	}
	if over.Remaining >= 0 {
		t.Errorf("Remaining = %v, want negative", over.Remaining)
	}
	if over.TotalCost <= under.TotalCost {
		t.Errorf("TotalCost did not grow: %v <= %v", over.TotalCost, under.TotalCost)
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect(config.StoreConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func TestSaveAndLatest(t *testing.T) {
	gdb := openTestDB(t)

	b := Compute(Inputs{
		AskingPrice: 15000,
		SellerType:  "dealer",
		Budget:      18000,
		Fees:        defaultFees(),
	})
	if err := Save(gdb, 7, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Latest(gdb, 7)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil {
		t.Fatal("Latest returned nil after Save")
	}
	if got.TotalCost != b.TotalCost {
		t.Errorf("TotalCost = %v, want %v", got.TotalCost, b.TotalCost)
	}
	if got.Fees[FeeDocumentation] != 499 {
		t.Errorf("stored documentation fee = %v, want 499", got.Fees[FeeDocumentation])
	}
}

func TestSave_ReplacesSnapshot(t *testing.T) {
	gdb := openTestDB(t)
	in := Inputs{
		AskingPrice: 15000,
		SellerType:  "private",
		Budget:      18000,
		Fees:        defaultFees(),
	}
	if err := Save(gdb, 3, Compute(in)); err != nil {
		t.Fatal(err)
	}

	negotiated := 13000.0
	in.NegotiatedPrice = &negotiated
	if err := Save(gdb, 3, Compute(in)); err != nil {
		t.Fatal(err)
	}

	got, err := Latest(gdb, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got.NegotiatedPrice == nil || *got.NegotiatedPrice != 13000 {
		t.Errorf("NegotiatedPrice = %v, want 13000 after replace", got.NegotiatedPrice)
	}

	var count int64
	if err := gdb.Model(&models.CostBreakdown{}).Where("listing_id = ?", 3).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("rows for listing 3 = %d, want 1 (upsert, not append)", count)
	}
}

func TestLatest_Missing(t *testing.T) {
	gdb := openTestDB(t)
	got, err := Latest(gdb, 99)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != nil {
		t.Errorf("Latest = %+v, want nil for missing snapshot", got)
	}
}
