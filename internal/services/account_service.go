package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/realtime"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
)

// maxCodeAttempts bounds the code retry loop of CreateWithDedupCheck.
const maxCodeAttempts = 100

type AccountService struct {
	Repo     *repositories.AccountRepository
	Notifier ChangeNotifier
	logger   *zap.Logger
}

func NewAccountService(repo *repositories.AccountRepository, notifier ChangeNotifier, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{Repo: repo, Notifier: notifier, logger: logger}
}

func validateAccount(in *models.AccountInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Code = strings.TrimSpace(in.Code)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.TaxNumber = strings.TrimSpace(in.TaxNumber)

	if in.Title == "" {
		return invalid("Ünvan zorunludur")
	}
	if in.Kind == "" {
		in.Kind = models.AccountKindCustomer
	}
	if !in.Kind.Valid() {
		return invalid("Geçersiz cari tipi: %s", in.Kind)
	}
	in.LegalForm = in.LegalForm.OrDefault()
	if !in.LegalForm.Valid() {
		return invalid("Geçersiz firma tipi: %s", in.LegalForm)
	}
	return nil
}

func (s *AccountService) changed(ctx context.Context, action string, id int) {
	cache.InvalidateAccountCaches(ctx)
	notify(s.Notifier, realtime.ResourceAccount, action, id)
}

// Create inserts an account, allocating the next numeric code when none is given.
func (s *AccountService) Create(ctx context.Context, in *models.AccountInput) (int, error) {
	if err := validateAccount(in); err != nil {
		return 0, err
	}
	if in.Code == "" {
		code, err := s.NextCode(ctx)
		if err != nil {
			return 0, err
		}
		in.Code = code
	}

	id, ok, err := s.Repo.Create(ctx, in)
	if err != nil {
		s.logger.Error("account create failed", zap.Error(err))
		return 0, err
	}
	if !ok {
		return 0, invalid("Cari kodu zaten kullanılıyor")
	}
	s.changed(ctx, "create", id)
	return id, nil
}

func (s *AccountService) Get(ctx context.Context, id int) (*models.Account, error) {
	return s.Repo.Get(ctx, id)
}

func (s *AccountService) List(ctx context.Context, search string, kind models.AccountKind) ([]*models.Account, error) {
	if kind != "" && !kind.Valid() {
		return nil, invalid("Geçersiz cari tipi: %s", kind)
	}
	return s.Repo.List(ctx, search, kind)
}

func (s *AccountService) Update(ctx context.Context, id int, in *models.AccountInput) error {
	if err := validateAccount(in); err != nil {
		return err
	}
	ok, err := s.Repo.Update(ctx, id, in)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("Cari kodu zaten kullanılıyor")
	}
	s.changed(ctx, "update", id)
	return nil
}

func (s *AccountService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", id)
	return nil
}

func (s *AccountService) FindByNationalID(ctx context.Context, nationalID string) (*models.Account, error) {
	return s.Repo.FindByNationalID(ctx, nationalID)
}

func (s *AccountService) FindByTitle(ctx context.Context, title string) (*models.Account, error) {
	return s.Repo.FindByTitle(ctx, title)
}

// NextCode returns the largest purely numeric code plus one, or "1".
// Non-numeric codes are ignored.
func (s *AccountService) NextCode(ctx context.Context) (string, error) {
	codes, err := s.Repo.NumericCodes(ctx)
	if err != nil {
		return "", err
	}
	var max int64
	for _, c := range codes {
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

// CreateWithDedupCheck inserts an account unless an equivalent one exists.
// A duplicate is not an error: accepted is true and the message names the
// existing account. Matching runs in this order:
//
//  1. national ID
//  2. tax number
//  3. title, only when no national ID was given
//
// Otherwise the account is inserted, with a colliding code replaced by the
// next free numeric code.
func (s *AccountService) CreateWithDedupCheck(ctx context.Context, in *models.AccountInput) (accepted bool, message string, err error) {
	if err := validateAccount(in); err != nil {
		return false, "", err
	}

	if in.NationalID != "" {
		existing, err := s.Repo.FindByNationalID(ctx, in.NationalID)
		if err == nil {
			return true, fmt.Sprintf("Bu TC kimlik no'ya sahip cari hesap zaten mevcut: %s", existing.Title), nil
		}
		if !errors.Is(err, repositories.ErrAccountNotFound) {
			return false, "", err
		}
	}

	if in.TaxNumber != "" {
		existing, err := s.Repo.FindByTaxNumber(ctx, in.TaxNumber)
		if err == nil {
			return true, fmt.Sprintf("Bu VKN'ye sahip cari hesap zaten mevcut: %s", existing.Title), nil
		}
		if !errors.Is(err, repositories.ErrAccountNotFound) {
			return false, "", err
		}
	}

	// Title only matches callers without a national ID.
	if in.NationalID == "" {
		_, err := s.Repo.FindByTitle(ctx, in.Title)
		if err == nil {
			return true, fmt.Sprintf("Aynı ünvana sahip cari hesap zaten mevcut: %s", in.Title), nil
		}
		if !errors.Is(err, repositories.ErrAccountNotFound) {
			return false, "", err
		}
	}

	if in.Code == "" {
		if in.Code, err = s.NextCode(ctx); err != nil {
			return false, "", err
		}
	}
	if in.TaxNumber == "" {
		in.TaxNumber = in.NationalID
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id, ok, err := s.Repo.Create(ctx, in)
		if err != nil {
			s.logger.Error("account insert failed", zap.String("code", in.Code), zap.Error(err))
			break
		}
		if ok {
			s.changed(ctx, "create", id)
			return true, fmt.Sprintf("Cari hesap başarıyla eklendi (Cari Kodu: %s)", in.Code), nil
		}

		taken, err := s.Repo.CodeExists(ctx, in.Code)
		if err != nil || !taken {
			// Rejected for a reason other than the code.
			break
		}
		next, err := s.nextCodeAfter(ctx, in.Code)
		if err != nil {
			return false, "", err
		}
		in.Code = next
	}

	if existing, err := s.Repo.FindByTitle(ctx, in.Title); err == nil {
		return true, fmt.Sprintf("Aynı ünvana sahip cari hesap zaten mevcut: %s", existing.Title), nil
	}
	return false, "Cari hesap eklenirken bir hata oluştu", nil
}

// nextCodeAfter returns NextCode, or code+1 when NextCode would repeat code.
func (s *AccountService) nextCodeAfter(ctx context.Context, code string) (string, error) {
	next, err := s.NextCode(ctx)
	if err != nil {
		return "", err
	}
	if next != code {
		return next, nil
	}
	n, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return next, nil
	}
	return strconv.FormatInt(n+1, 10), nil
}
