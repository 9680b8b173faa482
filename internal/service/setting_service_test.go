package service

import (
	"testing"

	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
)

func setupSettingServiceTest(t *testing.T) *SettingService {
	t.Helper()
	db := openServiceTestDB(t, "setting_service_test")
	return NewSettingService(repository.NewSettingRepository(db))
}

func TestCommissionSettingValidate(t *testing.T) {
	cases := []struct {
		name    string
		setting CommissionSetting
		wantErr error
	}{
		{
			name:    "defaults",
			setting: CommissionDefaultSetting(),
		},
		{
			name: "split equals fee",
			setting: CommissionSetting{
				FeeRatePercent:  decimal.NewFromInt(5),
				CashbackPercent: decimal.NewFromInt(3),
				ReferralPercent: decimal.NewFromInt(2),
			},
		},
		{
			name: "split exceeds fee",
			setting: CommissionSetting{
				FeeRatePercent:  decimal.NewFromInt(5),
				CashbackPercent: decimal.NewFromInt(4),
				ReferralPercent: decimal.NewFromInt(2),
			},
			wantErr: ErrCommissionRateInvalid,
		},
		{
			name: "negative cashback",
			setting: CommissionSetting{
				FeeRatePercent:  decimal.NewFromInt(5),
				CashbackPercent: decimal.NewFromInt(-1),
			},
			wantErr: ErrCommissionRateInvalid,
		},
		{
			name: "fee above hundred",
			setting: CommissionSetting{
				FeeRatePercent: decimal.NewFromInt(101),
			},
			wantErr: ErrCommissionRateInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setting.Validate(); err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCommissionSettingRoundtrip(t *testing.T) {
	svc := setupSettingServiceTest(t)

	// 未配置时返回默认 5/2/1
	setting, err := svc.GetCommissionSetting()
	if err != nil {
		t.Fatalf("get defaults failed: %v", err)
	}
	if setting.FeeRatePercent.StringFixed(2) != "5.00" {
		t.Fatalf("unexpected default fee rate: %s", setting.FeeRatePercent.StringFixed(2))
	}

	if _, err := svc.UpdateCommissionSetting(CommissionSetting{
		FeeRatePercent:  decimal.NewFromInt(10),
		CashbackPercent: decimal.NewFromInt(4),
		ReferralPercent: decimal.NewFromInt(2),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	setting, err = svc.GetCommissionSetting()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if setting.FeeRatePercent.StringFixed(2) != "10.00" ||
		setting.CashbackPercent.StringFixed(2) != "4.00" ||
		setting.ReferralPercent.StringFixed(2) != "2.00" {
		t.Fatalf("unexpected stored setting: %+v", setting)
	}

	if _, err := svc.UpdateCommissionSetting(CommissionSetting{
		FeeRatePercent:  decimal.NewFromInt(3),
		CashbackPercent: decimal.NewFromInt(4),
	}); err != ErrCommissionRateInvalid {
		t.Fatalf("expected invalid rates rejected, got: %v", err)
	}
}

func TestWithdrawalSettingRoundtrip(t *testing.T) {
	svc := setupSettingServiceTest(t)

	setting, err := svc.GetWithdrawalSetting()
	if err != nil {
		t.Fatalf("get defaults failed: %v", err)
	}
	if setting.MinAmount.StringFixed(2) != "20.00" {
		t.Fatalf("unexpected default min amount: %s", setting.MinAmount.StringFixed(2))
	}

	if _, err := svc.UpdateWithdrawalSetting(WithdrawalSetting{MinAmount: decimal.NewFromInt(-1)}); err != ErrSettingInvalid {
		t.Fatalf("expected negative min rejected, got: %v", err)
	}
	if _, err := svc.UpdateWithdrawalSetting(WithdrawalSetting{MinAmount: decimal.NewFromInt(35)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	setting, err = svc.GetWithdrawalSetting()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if setting.MinAmount.StringFixed(2) != "35.00" {
		t.Fatalf("unexpected stored min amount: %s", setting.MinAmount.StringFixed(2))
	}
}

func TestReferralSettingRoundtrip(t *testing.T) {
	svc := setupSettingServiceTest(t)

	setting, err := svc.GetReferralSetting()
	if err != nil {
		t.Fatalf("get defaults failed: %v", err)
	}
	if !setting.MinTransactionAmount.IsZero() {
		t.Fatalf("unexpected default threshold: %s", setting.MinTransactionAmount.String())
	}

	if _, err := svc.UpdateReferralSetting(ReferralSetting{MinTransactionAmount: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	setting, err = svc.GetReferralSetting()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if setting.MinTransactionAmount.StringFixed(2) != "50.00" {
		t.Fatalf("unexpected stored threshold: %s", setting.MinTransactionAmount.StringFixed(2))
	}
}

func TestSiteSettingRoundtrip(t *testing.T) {
	svc := setupSettingServiceTest(t)

	setting, err := svc.GetSiteSetting()
	if err != nil {
		t.Fatalf("get defaults failed: %v", err)
	}
	if setting.SiteName != "Vale Cashback" || setting.Currency != "BRL" {
		t.Fatalf("unexpected defaults: %+v", setting)
	}

	if _, err := svc.UpdateSiteSetting(SiteSetting{SiteName: "  ", Currency: "BRL"}); err != ErrSettingInvalid {
		t.Fatalf("expected empty name rejected, got: %v", err)
	}
	if _, err := svc.UpdateSiteSetting(SiteSetting{SiteName: "Vale", Currency: "REAL"}); err != ErrSettingInvalid {
		t.Fatalf("expected bad currency rejected, got: %v", err)
	}

	if _, err := svc.UpdateSiteSetting(SiteSetting{SiteName: "Vale Cashback Brasil", Currency: "usd"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	setting, err = svc.GetSiteSetting()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if setting.SiteName != "Vale Cashback Brasil" || setting.Currency != "USD" {
		t.Fatalf("unexpected stored setting: %+v", setting)
	}
}
