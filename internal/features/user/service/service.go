package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	fraudmodels "referral-rewards-backend/internal/features/fraud/models"
	fraudservice "referral-rewards-backend/internal/features/fraud/service"
	ledgerservice "referral-rewards-backend/internal/features/ledger/service"
	referralmodels "referral-rewards-backend/internal/features/referral/models"
	"referral-rewards-backend/internal/features/topup/catalog"
	topupservice "referral-rewards-backend/internal/features/topup/service"
	"referral-rewards-backend/internal/features/user/models"
	"referral-rewards-backend/internal/features/user/repository"
	"referral-rewards-backend/internal/platform/geoip"
	"referral-rewards-backend/internal/platform/identity"
	"referral-rewards-backend/internal/utils/cipher"
	"referral-rewards-backend/internal/utils/phone"
)

const (
	welcomeTokens = 10
	streakDays    = 5
	streakTokens  = 15

	spinsPerDay    = 6
	checkInsPerDay = 1

	randomBundlePrice = 100
)

// Offer is a purchasable bundle priced in tokens. Airtime offers carry the
// naira amount; data offers resolve to the operator's fixed variation at
// purchase time.
type Offer struct {
	Name    string
	Price   float64
	Airtime int
}

var bundleOffers = map[string]Offer{
	"₦1000 Airtime": {Name: "₦1000 Airtime", Price: 140, Airtime: 1000},
	"1GB Data":      {Name: "1GB Data", Price: 100},
}

// ReferralCreator records the referral edge for a referrer once their invitee
// finishes registration.
type ReferralCreator interface {
	Create(ctx context.Context, userID, friendID, referrerPhone string) (*referralmodels.Friend, error)
}

// GeoResolver looks up the caller's public IP and country.
type GeoResolver interface {
	Lookup(ctx context.Context) geoip.Location
}

type Service struct {
	repo      repository.Repository
	fraud     *fraudservice.Service
	identity  identity.Provider
	geo       GeoResolver
	gateway   topupservice.Gateway
	ledger    *ledgerservice.Service
	referrals ReferralCreator

	cipherShift int

	now func() time.Time
}

func NewService(
	repo repository.Repository,
	fraud *fraudservice.Service,
	idp identity.Provider,
	geo GeoResolver,
	gateway topupservice.Gateway,
	ledger *ledgerservice.Service,
	referrals ReferralCreator,
	cipherShift int,
) *Service {
	return &Service{
		repo:        repo,
		fraud:       fraud,
		identity:    idp,
		geo:         geo,
		gateway:     gateway,
		ledger:      ledger,
		referrals:   referrals,
		cipherShift: cipherShift,
		now:         time.Now,
	}
}

// Directory resolves decoded phone numbers straight from stored profiles.
// It exists so reward flows can look up numbers without depending on the
// account service.
type Directory struct {
	repo  repository.Repository
	shift int
}

func NewDirectory(repo repository.Repository, shift int) *Directory {
	return &Directory{repo: repo, shift: shift}
}

func (d *Directory) PhoneNumber(ctx context.Context, userID string) (string, error) {
	user, err := d.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return cipher.Decode(user.PhoneNumber, d.shift, true), nil
}

// RegisterInput is everything registration needs from the client.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string

	// Referrer is the inviting user's username from the invite link.
	Referrer string

	Timezone   string
	Language   string
	UserAgent  string
	IsDarkMode bool
	IP         string

	Device models.DeviceInfo
}

// Register runs the full signup pipeline: fraud screening, identity account
// creation, profile storage and the referral credit for the inviter. The
// fraud reservation is only committed once the profile is durably stored.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Device.Fingerprint == "" {
		in.Device.Fingerprint = fmt.Sprintf("%s-%s-%s", in.Device.OS, in.Device.Browser, in.Device.Model)
	}

	country := "Unknown"
	if in.IP == "" {
		loc := s.geo.Lookup(ctx)
		in.IP = loc.IP
		country = loc.Country
	}

	screening := fraudmodels.RegistrationInput{
		Email:             in.Email,
		Phone:             in.Phone,
		Password:          in.Password,
		IP:                in.IP,
		DeviceFingerprint: in.Device.Fingerprint,
	}
	if err := s.fraud.Screen(ctx, screening); err != nil {
		return nil, err
	}

	uid, err := s.identity.Register(ctx, in.Email, in.Password)
	if err != nil {
		s.fraud.Rollback(ctx, screening)
		return nil, err
	}

	network := phone.Operator(in.Phone)
	now := s.now().UTC()
	user := &models.User{
		ID:          uid,
		Username:    s.pickUsername(ctx),
		Email:       in.Email,
		PhoneNumber: cipher.Encode(phone.Normalize(in.Phone), s.cipherShift, true),
		MNO:         string(network),
		Country:     country,
		IPAddress:   in.IP,
		Timezone:    in.Timezone,
		Language:    in.Language,
		DeviceInfo:  in.Device,
		UserAgent:   in.UserAgent,
		IsDarkMode:  in.IsDarkMode,
		Welcome:     models.Welcome{BundleCode: catalog.RandomBundle(network)},
		LoginMethod: "email",
		Referrer:    in.Referrer,
		CreatedAt:   now,
		LastLogin:   now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.fraud.Rollback(ctx, screening)
		return nil, err
	}

	if err := s.fraud.Commit(ctx, uid, screening); err != nil {
		logger.Error().Err(err).Str("user_id", uid).Msg("failed to commit fraud indexes")
	}

	s.creditReferrer(ctx, in.Referrer, uid)

	return s.withDecodedPhone(user), nil
}

// creditReferrer records the referral edge for the inviting user. Failures
// never fail the registration itself.
func (s *Service) creditReferrer(ctx context.Context, referrer, newUserID string) {
	if referrer == "" {
		return
	}

	referrerID, err := s.repo.GetIDByUsername(ctx, referrer)
	if err != nil || referrerID == newUserID {
		if err != nil {
			logger.Warn().Err(err).Str("referrer", referrer).Msg("referrer lookup failed")
		}
		return
	}

	profile, err := s.repo.Get(ctx, referrerID)
	if err != nil {
		logger.Warn().Err(err).Str("referrer", referrer).Msg("referrer profile fetch failed")
		return
	}

	referrerPhone := cipher.Decode(profile.PhoneNumber, s.cipherShift, true)
	if _, err := s.referrals.Create(ctx, referrerID, newUserID, referrerPhone); err != nil {
		logger.Warn().Err(err).Str("referrer", referrer).Msg("referral credit failed")
	}
}

func (s *Service) pickUsername(ctx context.Context) string {
	return generateUsername(func(candidate string) bool {
		taken, err := s.repo.UsernameTaken(ctx, candidate)
		if err != nil {
			logger.Warn().Err(err).Msg("username check failed")
			return false
		}
		return taken
	})
}

// Login authenticates by email, or by username when the identifier carries
// no "@". Usernames resolve to the stored account email first.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, *identity.Session, error) {
	email := identifier
	if !strings.Contains(identifier, "@") {
		id, err := s.repo.GetIDByUsername(ctx, identifier)
		if err != nil {
			return nil, nil, err
		}
		profile, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		email = profile.Email
	}

	session, err := s.identity.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.repo.Get(ctx, session.UID)
	if err != nil {
		return nil, nil, err
	}

	user.LastLogin = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to stamp last login")
	}

	return s.withDecodedPhone(user), session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.identity.Logout(ctx, token)
}

func (s *Service) ResetPassword(ctx context.Context, email string) error {
	return s.identity.SendPasswordReset(ctx, email)
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withDecodedPhone(user), nil
}

// ClaimWelcome delivers the data bundle promised at signup plus the welcome
// tokens. The claim is committed only after delivery so a failed top-up
// leaves the reward claimable.
func (s *Service) ClaimWelcome(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(user); err != nil {
		return nil, err
	}
	if user.Welcome.IsClaimed {
		return nil, errors.NewAlreadyClaimedError("welcome")
	}

	if !s.gateway.Admissible(ctx) {
		return nil, errors.NewAdmissionDenied()
	}

	number := cipher.Decode(user.PhoneNumber, s.cipherShift, true)
	if err := s.gateway.TopUpData(ctx, number, user.Welcome.BundleCode); err != nil {
		return nil, err
	}

	task := fmt.Sprintf("Welcome Reward: Received %v tokens", welcomeTokens)
	if _, err := s.ledger.Grant(ctx, userID, welcomeTokens, task); err != nil {
		return nil, err
	}

	won, err := s.repo.MarkWelcomeClaimed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, errors.NewAlreadyClaimedError("welcome")
	}

	user.Welcome.IsClaimed = true
	user.Welcome.Date = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("failed to persist welcome claim flag")
	}

	return s.withDecodedPhone(user), nil
}

// PurchaseBundle spends tokens on a catalog offer and delivers it. A failed
// delivery refunds the spend.
func (s *Service) PurchaseBundle(ctx context.Context, userID, bundleName string) (float64, error) {
	offer, ok := bundleOffers[bundleName]
	if !ok {
		return 0, errors.NewValidationError("bundle", "unknown bundle")
	}

	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := ensureActive(user); err != nil {
		return 0, err
	}

	if !s.gateway.Admissible(ctx) {
		return 0, errors.NewAdmissionDenied()
	}

	task := "Bundle Purchase: Purchased " + offer.Name
	balance, err := s.ledger.Spend(ctx, userID, offer.Price, task)
	if err != nil {
		return 0, err
	}

	number := cipher.Decode(user.PhoneNumber, s.cipherShift, true)
	if offer.Airtime > 0 {
		err = s.gateway.TopUpAirtime(ctx, number, offer.Airtime)
	} else {
		variation, found := catalog.FixedBundle(phone.Operator(number))
		if !found {
			err = errors.NewValidationError("phone", "operator has no data bundle")
		} else {
			err = s.gateway.TopUpData(ctx, number, variation)
		}
	}
	if err != nil {
		if balance, refundErr := s.ledger.Refund(ctx, userID, offer.Price, "Refund: "+offer.Name); refundErr != nil {
			logger.Error().Err(refundErr).Str("user_id", userID).Float64("balance", balance).
				Msg("refund after failed delivery did not apply")
		}
		return 0, err
	}

	return balance, nil
}

// RandomPurchase is the outcome of a random bundle draw.
type RandomPurchase struct {
	Description string  `json:"description"`
	Balance     float64 `json:"balance"`
}

// PurchaseRandomBundle spends a flat price on a surprise reward: either a
// random airtime amount or the operator's fixed data bundle, drawn evenly.
func (s *Service) PurchaseRandomBundle(ctx context.Context, userID string) (*RandomPurchase, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(user); err != nil {
		return nil, err
	}

	if !s.gateway.Admissible(ctx) {
		return nil, errors.NewAdmissionDenied()
	}

	number := cipher.Decode(user.PhoneNumber, s.cipherShift, true)
	network := phone.Operator(number)

	var (
		task     string
		airtime  int
		dataCode string
	)
	if rand.Intn(2) == 0 {
		airtime = rand.Intn(401) + 100
		task = fmt.Sprintf("Random Bundle: Received Airtime (₦%d)", airtime)
	} else {
		variation, found := catalog.FixedBundle(network)
		if !found {
			return nil, errors.NewValidationError("phone", "operator has no data bundle")
		}
		dataCode = variation
		task = fmt.Sprintf("Random Bundle: Received %s Data", catalog.BundleSize(variation))
	}

	balance, err := s.ledger.Spend(ctx, userID, randomBundlePrice, task)
	if err != nil {
		return nil, err
	}

	if airtime > 0 {
		err = s.gateway.TopUpAirtime(ctx, number, airtime)
	} else {
		err = s.gateway.TopUpData(ctx, number, dataCode)
	}
	if err != nil {
		if balance, refundErr := s.ledger.Refund(ctx, userID, randomBundlePrice, "Refund: Random Bundle"); refundErr != nil {
			logger.Error().Err(refundErr).Str("user_id", userID).Float64("balance", balance).
				Msg("refund after failed delivery did not apply")
		}
		return nil, err
	}

	return &RandomPurchase{Description: task, Balance: balance}, nil
}

// SpinResult is one lucky spin outcome plus the counter the client must send
// back on the next spin.
type SpinResult struct {
	Won     bool                `json:"won"`
	Tokens  float64             `json:"tokens"`
	Counter models.DailyCounter `json:"counter"`
}

// LuckySpin grants a small random token prize with a 30% win chance, at most
// six spins per day.
func (s *Service) LuckySpin(ctx context.Context, userID string, counter models.DailyCounter) (*SpinResult, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(user); err != nil {
		return nil, err
	}

	counter = counter.Reset(s.today())
	if counter.Count >= spinsPerDay {
		return nil, errors.NewDailyLimitError("lucky_spin")
	}
	counter.Count++

	result := &SpinResult{Counter: counter}
	if rand.Float64() > 0.7 {
		result.Won = true
		result.Tokens = round2(rand.Float64()*0.8 + 0.2)
		task := fmt.Sprintf("Feeling Lucky! You won %v tokens!", result.Tokens)
		if _, err := s.ledger.Grant(ctx, userID, result.Tokens, task); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// CheckInResult is a daily check-in outcome.
type CheckInResult struct {
	Tokens  float64             `json:"tokens"`
	Counter models.DailyCounter `json:"counter"`
}

// DailyCheckIn grants 5 to 10 tokens once per calendar day.
func (s *Service) DailyCheckIn(ctx context.Context, userID string, counter models.DailyCounter) (*CheckInResult, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(user); err != nil {
		return nil, err
	}

	counter = counter.Reset(s.today())
	if counter.Count >= checkInsPerDay {
		return nil, errors.NewDailyLimitError("daily_check_in")
	}
	counter.Count++

	tokens := float64(rand.Intn(6) + 5)
	task := fmt.Sprintf("Claimed %v tokens from daily check-in", tokens)
	if _, err := s.ledger.Grant(ctx, userID, tokens, task); err != nil {
		return nil, err
	}

	return &CheckInResult{Tokens: tokens, Counter: counter}, nil
}

// ClaimStreakBonus pays the login streak bonus once the client reports five
// consecutive daily logins.
func (s *Service) ClaimStreakBonus(ctx context.Context, userID string, streak int) (float64, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := ensureActive(user); err != nil {
		return 0, err
	}

	if streak < streakDays {
		return 0, errors.New(errors.ErrCodeChallengePending, "Login streak not long enough yet").
			WithDetail("streak", streak).
			WithDetail("required", streakDays)
	}

	task := fmt.Sprintf("Bonus Claim: Received %v tokens", streakTokens)
	return s.ledger.Grant(ctx, userID, streakTokens, task)
}

func (s *Service) withDecodedPhone(user *models.User) *models.User {
	decoded := *user
	decoded.PhoneNumber = cipher.Decode(user.PhoneNumber, s.cipherShift, true)
	return &decoded
}

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func ensureActive(user *models.User) error {
	if user.IsBlocked || user.FraudDetected {
		return errors.New(errors.ErrCodeUserBlocked, "Your account has been restricted.").
			WithDetail("user_id", user.ID)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
