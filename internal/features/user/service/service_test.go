package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-rewards-backend/internal/common/errors"
	fraudredis "referral-rewards-backend/internal/features/fraud/repository/redis"
	fraudservice "referral-rewards-backend/internal/features/fraud/service"
	ledgerredis "referral-rewards-backend/internal/features/ledger/repository/redis"
	ledgerservice "referral-rewards-backend/internal/features/ledger/service"
	referralredis "referral-rewards-backend/internal/features/referral/repository/redis"
	referralservice "referral-rewards-backend/internal/features/referral/service"
	"referral-rewards-backend/internal/features/user/models"
	userredis "referral-rewards-backend/internal/features/user/repository/redis"
	"referral-rewards-backend/internal/platform/geoip"
	"referral-rewards-backend/internal/platform/identity"
	"referral-rewards-backend/internal/platform/redis"
	"referral-rewards-backend/internal/utils/cipher"
)

const testShift = 7

type fakeGateway struct {
	admissible bool
	airtime    []int
	data       []string
	failTopUp  bool
}

func (g *fakeGateway) Balance(ctx context.Context) (float64, error) { return 5000, nil }
func (g *fakeGateway) Admissible(ctx context.Context) bool          { return g.admissible }

func (g *fakeGateway) TopUpAirtime(ctx context.Context, number string, amount int) error {
	if g.failTopUp {
		return errors.NewExternalAPIError("vtu", assert.AnError)
	}
	g.airtime = append(g.airtime, amount)
	return nil
}

func (g *fakeGateway) TopUpData(ctx context.Context, number, variationID string) error {
	if g.failTopUp {
		return errors.NewExternalAPIError("vtu", assert.AnError)
	}
	g.data = append(g.data, variationID)
	return nil
}

type fakeIdentity struct {
	registered int
	fail       bool
}

func (p *fakeIdentity) Register(ctx context.Context, email, password string) (string, error) {
	if p.fail {
		return "", errors.NewExternalAPIError("identity", assert.AnError)
	}
	p.registered++
	return "uid-" + email, nil
}

func (p *fakeIdentity) Login(ctx context.Context, email, password string) (*identity.Session, error) {
	return &identity.Session{UID: "uid-" + email, Token: "tok"}, nil
}

func (p *fakeIdentity) Logout(ctx context.Context, token string) error            { return nil }
func (p *fakeIdentity) SendPasswordReset(ctx context.Context, email string) error { return nil }

type fakeGeo struct{}

func (fakeGeo) Lookup(ctx context.Context) geoip.Location {
	return geoip.Location{Country: "NG", IP: "41.0.0.1"}
}

type fixture struct {
	svc      *Service
	ledger   *ledgerservice.Service
	repo     *userredis.Repository
	gateway  *fakeGateway
	identity *fakeIdentity
	referral *referralservice.Service
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T, gw *fakeGateway) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}

	ledger := ledgerservice.NewService(ledgerredis.NewRepository(client))
	userRepo := userredis.NewRepository(client)
	fraud := fraudservice.NewService(fraudredis.NewRepository(client, time.Minute), gw)
	referral := referralservice.NewService(
		referralredis.NewRepository(client), ledger, gw, NewDirectory(userRepo, testShift))
	idp := &fakeIdentity{}

	svc := NewService(userRepo, fraud, idp, fakeGeo{}, gw, ledger, referral, testShift)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, ledger: ledger, repo: userRepo, gateway: gw, identity: idp, referral: referral, mr: mr}
}

func registerInput(email, number string) RegisterInput {
	return RegisterInput{
		Email:    email,
		Phone:    number,
		Password: "Abc123!",
		IP:       "203.0.113.7",
		Device:   models.DeviceInfo{OS: "Android", Browser: "Chrome", Model: email},
	}
}

func seedUser(t *testing.T, f *fixture, id, username, number, bundle string) {
	t.Helper()
	err := f.repo.Create(context.Background(), &models.User{
		ID:          id,
		Username:    username,
		Email:       id + "@example.com",
		PhoneNumber: cipher.Encode(number, testShift, true),
		MNO:         "mtn",
		Welcome:     models.Welcome{BundleCode: bundle},
	})
	require.NoError(t, err)
}

func TestRegisterHappyPath(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	user, err := f.svc.Register(ctx, registerInput("a@b.com", "08031234567"))
	require.NoError(t, err)

	assert.Equal(t, "uid-a@b.com", user.ID)
	assert.Equal(t, "mtn", user.MNO)
	assert.Equal(t, "08031234567", user.PhoneNumber)
	assert.NotEmpty(t, user.Username)
	assert.Contains(t, []string{"500", "M1024"}, user.Welcome.BundleCode)
	assert.False(t, user.Welcome.IsClaimed)

	balance, level, err := f.ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance.Tokens)
	assert.Equal(t, 1, level)

	// stored form is obfuscated
	stored, err := f.repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "08031234567", stored.PhoneNumber)
	assert.Equal(t, "08031234567", cipher.Decode(stored.PhoneNumber, testShift, true))
}

func TestRegisterCreditsReferrer(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	seedUser(t, f, "ref-1", "Lucky Lark", "08031110000", "M1024")

	in := registerInput("new@b.com", "08052223333")
	in.Referrer = "Lucky Lark"
	user, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	count, err := f.referral.Count(ctx, "ref-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	friends, err := f.referral.List(ctx, "ref-1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, user.ID, friends[0].FriendID)
	assert.False(t, friends[0].IsClaimed)
}

func TestRegisterUnknownReferrerIsIgnored(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})

	in := registerInput("new@b.com", "08052223333")
	in.Referrer = "Nobody Here"
	_, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
}

func TestRegisterWeakPasswordNeverHitsIdentity(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})

	in := registerInput("a@b.com", "08031234567")
	in.Password = "short"
	_, err := f.svc.Register(context.Background(), in)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFraudRejected, appErr.Code)
	assert.Zero(t, f.identity.registered)
}

func TestRegisterIdentityFailureFreesThePhone(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	f.identity.fail = true
	_, err := f.svc.Register(ctx, registerInput("a@b.com", "08031234567"))
	require.Error(t, err)

	// same number registers fine once the identity service recovers and
	// the attempt cooldown lapses
	f.mr.FastForward(61 * time.Second)
	f.identity.fail = false
	_, err = f.svc.Register(ctx, registerInput("a@b.com", "08031234567"))
	require.NoError(t, err)
}

func TestClaimWelcome(t *testing.T) {
	gw := &fakeGateway{admissible: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")

	user, err := f.svc.ClaimWelcome(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Welcome.IsClaimed)
	assert.Equal(t, []string{"M1024"}, gw.data)

	balance, _, err := f.ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(welcomeTokens), balance.Tokens)

	_, err = f.svc.ClaimWelcome(ctx, "u1")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyClaimed, appErr.Code)
	assert.Len(t, gw.data, 1)
}

func TestClaimWelcomeInadmissibleStaysClaimable(t *testing.T) {
	gw := &fakeGateway{admissible: false}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")

	_, err := f.svc.ClaimWelcome(ctx, "u1")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAdmissionDenied, appErr.Code)

	gw.admissible = true
	_, err = f.svc.ClaimWelcome(ctx, "u1")
	require.NoError(t, err)
}

func TestPurchaseBundleInsufficientTokens(t *testing.T) {
	gw := &fakeGateway{admissible: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")
	_, err := f.ledger.Grant(ctx, "u1", 50, "seed")
	require.NoError(t, err)

	_, err = f.svc.PurchaseBundle(ctx, "u1", "₦1000 Airtime")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInsufficientTokens, appErr.Code)

	assert.Empty(t, gw.airtime)
	balance, _, err := f.ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, balance.Tokens)
}

func TestPurchaseBundleAirtime(t *testing.T) {
	gw := &fakeGateway{admissible: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")
	_, err := f.ledger.Grant(ctx, "u1", 200, "seed")
	require.NoError(t, err)

	balance, err := f.svc.PurchaseBundle(ctx, "u1", "₦1000 Airtime")
	require.NoError(t, err)
	assert.Equal(t, 60.0, balance)
	assert.Equal(t, []int{1000}, gw.airtime)

	history, err := f.ledger.History(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "Bundle Purchase: Purchased ₦1000 Airtime", history[0].Task)
	assert.Equal(t, -140.0, history[0].Tokens)
}

func TestPurchaseBundleData(t *testing.T) {
	gw := &fakeGateway{admissible: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")
	_, err := f.ledger.Grant(ctx, "u1", 150, "seed")
	require.NoError(t, err)

	balance, err := f.svc.PurchaseBundle(ctx, "u1", "1GB Data")
	require.NoError(t, err)
	assert.Equal(t, 50.0, balance)
	assert.Equal(t, []string{"M1024"}, gw.data)
}

func TestPurchaseBundleRefundsFailedDelivery(t *testing.T) {
	gw := &fakeGateway{admissible: true, failTopUp: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")
	_, err := f.ledger.Grant(ctx, "u1", 200, "seed")
	require.NoError(t, err)

	_, err = f.svc.PurchaseBundle(ctx, "u1", "₦1000 Airtime")
	require.Error(t, err)

	balance, _, err := f.ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, balance.Tokens)
}

func TestPurchaseRandomBundle(t *testing.T) {
	gw := &fakeGateway{admissible: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")
	_, err := f.ledger.Grant(ctx, "u1", 150, "seed")
	require.NoError(t, err)

	result, err := f.svc.PurchaseRandomBundle(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Balance)
	assert.NotEmpty(t, result.Description)
	assert.Equal(t, 1, len(gw.airtime)+len(gw.data))

	if len(gw.airtime) == 1 {
		assert.GreaterOrEqual(t, gw.airtime[0], 100)
		assert.LessOrEqual(t, gw.airtime[0], 500)
	} else {
		assert.Equal(t, "M1024", gw.data[0])
	}
}

func TestLuckySpinDailyLimit(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")

	_, err := f.svc.LuckySpin(ctx, "u1", models.DailyCounter{Date: "2026-03-02", Count: 6})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDailyLimitReached, appErr.Code)

	// a stale counter from yesterday resets
	result, err := f.svc.LuckySpin(ctx, "u1", models.DailyCounter{Date: "2026-03-01", Count: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counter.Count)
	assert.Equal(t, "2026-03-02", result.Counter.Date)
	if result.Won {
		assert.GreaterOrEqual(t, result.Tokens, 0.2)
		assert.LessOrEqual(t, result.Tokens, 1.0)
	} else {
		assert.Zero(t, result.Tokens)
	}
}

func TestDailyCheckIn(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")

	result, err := f.svc.DailyCheckIn(ctx, "u1", models.DailyCounter{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Tokens, 5.0)
	assert.LessOrEqual(t, result.Tokens, 10.0)

	_, err = f.svc.DailyCheckIn(ctx, "u1", result.Counter)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDailyLimitReached, appErr.Code)
}

func TestClaimStreakBonus(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")

	_, err := f.svc.ClaimStreakBonus(ctx, "u1", 3)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeChallengePending, appErr.Code)

	balance, err := f.svc.ClaimStreakBonus(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 15.0, balance)
}

func TestBlockedUserCannotEarn(t *testing.T) {
	f := newFixture(t, &fakeGateway{admissible: true})
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")
	user, err := f.repo.Get(ctx, "u1")
	require.NoError(t, err)
	user.IsBlocked = true
	require.NoError(t, f.repo.Update(ctx, user))

	_, err = f.svc.DailyCheckIn(ctx, "u1", models.DailyCounter{})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUserBlocked, appErr.Code)

	_, err = f.svc.ClaimWelcome(ctx, "u1")
	appErr, ok = errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUserBlocked, appErr.Code)
}

func TestGenerateUsernameAvoidsTaken(t *testing.T) {
	taken := map[string]bool{}
	first := generateUsername(func(s string) bool { return taken[s] })
	require.NotEmpty(t, first)

	taken[first] = true
	second := generateUsername(func(s string) bool { return taken[s] })
	assert.NotEqual(t, first, second)
}

func TestClaimWelcomeHonorsClaimFieldOverStaleProfile(t *testing.T) {
	gw := &fakeGateway{admissible: true}
	f := newFixture(t, gw)
	ctx := context.Background()

	seedUser(t, f, "u1", "Swift Serval", "08031234567", "M1024")

	// claim field set but the profile copy never synced, as after a lost
	// profile write
	won, err := f.repo.MarkWelcomeClaimed(ctx, "u1")
	require.NoError(t, err)
	require.True(t, won)

	_, err = f.svc.ClaimWelcome(ctx, "u1")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyClaimed, appErr.Code)

	// no re-delivery and no second grant
	assert.Empty(t, gw.data)
	balance, _, err := f.ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, balance.Tokens)
}
