// File: internal/promo/service_test.go
package promo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/company"
)

// MockPromoRepository is a mock type for promo.Repository
type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) Create(ctx context.Context, promo *Promocode) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}

func (m *MockPromoRepository) FindByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*Promocode, error) {
	args := m.Called(ctx, id, preloadAssociations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Promocode), args.Error(1)
}

func (m *MockPromoRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Promocode, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Promocode), args.Error(1)
}

func (m *MockPromoRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, q ListQuery) ([]Promocode, int64, error) {
	args := m.Called(ctx, companyID, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]Promocode), args.Get(1).(int64), args.Error(2)
}

func (m *MockPromoRepository) ListForFeed(ctx context.Context, category string) ([]Promocode, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Promocode), args.Error(1)
}

func (m *MockPromoRepository) Update(ctx context.Context, promo *Promocode, replaceCategories bool) error {
	args := m.Called(ctx, promo, replaceCategories)
	return args.Error(0)
}

func (m *MockPromoRepository) CountLikes(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, promoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockPromoRepository) CountActivations(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, promoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockPromoRepository) CountComments(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, promoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockPromoRepository) CountUniqueCodes(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, promoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockPromoRepository) AddLike(ctx context.Context, userID, promoID uuid.UUID) error {
	args := m.Called(ctx, userID, promoID)
	return args.Error(0)
}

func (m *MockPromoRepository) RemoveLike(ctx context.Context, userID, promoID uuid.UUID) error {
	args := m.Called(ctx, userID, promoID)
	return args.Error(0)
}

func (m *MockPromoRepository) LikedByUser(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, userID, promoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

func (m *MockPromoRepository) FindActivation(ctx context.Context, userID, promoID uuid.UUID) (*PromoActivation, error) {
	args := m.Called(ctx, userID, promoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PromoActivation), args.Error(1)
}

func (m *MockPromoRepository) CreateActivation(ctx context.Context, activation *PromoActivation) error {
	args := m.Called(ctx, activation)
	return args.Error(0)
}

func (m *MockPromoRepository) ActivatedByUser(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, userID, promoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

func (m *MockPromoRepository) ListActivationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PromoActivation, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]PromoActivation), args.Get(1).(int64), args.Error(2)
}

func (m *MockPromoRepository) UniqueCodeAt(ctx context.Context, promoID uuid.UUID, index int) (*PromoUniqueCode, error) {
	args := m.Called(ctx, promoID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PromoUniqueCode), args.Error(1)
}

func (m *MockPromoRepository) CreateComment(ctx context.Context, comment *PromoComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockPromoRepository) FindComment(ctx context.Context, promoID, commentID uuid.UUID) (*PromoComment, error) {
	args := m.Called(ctx, promoID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PromoComment), args.Error(1)
}

func (m *MockPromoRepository) ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]PromoComment, int64, error) {
	args := m.Called(ctx, promoID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]PromoComment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPromoRepository) UpdateComment(ctx context.Context, comment *PromoComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockPromoRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	args := m.Called(ctx, commentID)
	return args.Error(0)
}

func (m *MockPromoRepository) DigestStats(ctx context.Context, since time.Time) (DigestStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(DigestStats), args.Error(1)
}

// MockCompanyRepository is a mock type for company.Repository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindByEmail(ctx context.Context, email string) (*company.Company, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

type PromoServiceTestSuite struct {
	service       Service
	mockRepo      *MockPromoRepository
	mockCompanies *MockCompanyRepository
}

func setupPromoServiceTestSuite(t *testing.T) *PromoServiceTestSuite {
	ts := &PromoServiceTestSuite{}
	ts.mockRepo = new(MockPromoRepository)
	ts.mockCompanies = new(MockCompanyRepository)
	ts.service = NewService(ts.mockRepo, ts.mockCompanies, zap.NewNop())
	return ts
}

func validCreateRequest() CreatePromoRequest {
	return CreatePromoRequest{
		Description: "Ten percent off every latte this summer",
		Target:      &Target{Categories: []string{"coffee", "drinks"}},
		Mode:        ModeCommon,
		MaxCount:    intPtr(100),
		PromoCommon: strPtr("SUMMER10"),
	}
}

// expectCounters wires the three engagement lookups buildReadOnly performs.
func (ts *PromoServiceTestSuite) expectCounters(ctx context.Context, ids []uuid.UUID, likes, activations, uniques map[uuid.UUID]int64) {
	ts.mockRepo.On("CountLikes", ctx, ids).Return(likes, nil).Once()
	ts.mockRepo.On("CountActivations", ctx, ids).Return(activations, nil).Once()
	ts.mockRepo.On("CountUniqueCodes", ctx, ids).Return(uniques, nil).Once()
}

// --- Test Cases ---

func TestService_Create_CommonSuccess(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()
	promoID := uuid.New()
	req := validCreateRequest()

	ts.mockRepo.On("Create", ctx, mock.MatchedBy(func(p *Promocode) bool {
		return p.CompanyID == companyID &&
			p.Description == req.Description &&
			p.Mode == ModeCommon &&
			p.MaxCount == 100 &&
			p.PromoCommon != nil && *p.PromoCommon == "SUMMER10" &&
			len(p.Categories) == 2 &&
			p.Categories[0].Name == "coffee" &&
			p.Categories[1].Name == "drinks" &&
			len(p.UniqueCodes) == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Promocode).ID = promoID
	}).Return(nil).Once()

	id, err := ts.service.Create(ctx, companyID, req)

	assert.NoError(t, err)
	assert.Equal(t, promoID, id)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Create_UniqueKeepsSubmissionOrder(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()

	req := validCreateRequest()
	req.Mode = ModeUnique
	req.MaxCount = intPtr(1)
	req.PromoCommon = nil
	req.PromoUnique = []string{"CODE-A", "CODE-B", "CODE-C"}

	ts.mockRepo.On("Create", ctx, mock.MatchedBy(func(p *Promocode) bool {
		if len(p.UniqueCodes) != 3 {
			return false
		}
		for i, want := range []string{"CODE-A", "CODE-B", "CODE-C"} {
			if p.UniqueCodes[i].Position != i || p.UniqueCodes[i].Value != want {
				return false
			}
		}
		return true
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Promocode).ID = uuid.New()
	}).Return(nil).Once()

	_, err := ts.service.Create(ctx, companyID, req)

	assert.NoError(t, err)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Create_UniqueRequiresSingleUse(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	req := validCreateRequest()
	req.Mode = ModeUnique
	req.MaxCount = intPtr(3)

	_, err := ts.service.Create(context.Background(), uuid.New(), req)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "max_count")
	ts.mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_InvertedAgeBounds(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	req := validCreateRequest()
	req.Target = &Target{AgeFrom: intPtr(40), AgeUntil: intPtr(18)}

	_, err := ts.service.Create(context.Background(), uuid.New(), req)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "target.age_from")
	ts.mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_SingleEmptyCategory(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	req := validCreateRequest()
	req.Target = &Target{Categories: []string{""}}

	_, err := ts.service.Create(context.Background(), uuid.New(), req)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestService_Create_RelativeImageURL(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	req := validCreateRequest()
	req.ImageURL = strPtr("/banners/summer.png")

	_, err := ts.service.Create(context.Background(), uuid.New(), req)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "image_url")
}

func TestService_List_DecoratesWithOwnerAndCounters(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()

	owner := &company.Company{Name: "Acme Inc"}
	owner.ID = companyID

	p := Promocode{CompanyID: companyID, Description: "Ten percent off every latte", Mode: ModeCommon, MaxCount: 100}
	p.ID = uuid.New()
	q := ListQuery{Limit: 10, Offset: 0}

	ts.mockCompanies.On("FindByID", ctx, companyID).Return(owner, nil).Once()
	ts.mockRepo.On("ListByCompany", ctx, companyID, q).Return([]Promocode{p}, int64(7), nil).Once()
	ts.expectCounters(ctx, []uuid.UUID{p.ID},
		map[uuid.UUID]int64{p.ID: 4},
		map[uuid.UUID]int64{p.ID: 2},
		map[uuid.UUID]int64{},
	)

	views, total, err := ts.service.List(ctx, companyID, q)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), total, "total reflects the filter, not the page")
	assert.Len(t, views, 1)
	assert.Equal(t, "Acme Inc", views[0].CompanyName)
	assert.Equal(t, int64(4), views[0].LikeCount)
	assert.Equal(t, int64(2), views[0].UsedCount)
	assert.True(t, views[0].Active)
	ts.mockRepo.AssertExpectations(t)
	ts.mockCompanies.AssertExpectations(t)
}

func TestService_List_UnknownCompany(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()

	ts.mockCompanies.On("FindByID", ctx, companyID).
		Return(nil, common.ErrNotFound.WithDetails("Company not found.")).Once()

	_, _, err := ts.service.List(ctx, companyID, ListQuery{Limit: 10})

	assert.Error(t, err)
	ts.mockRepo.AssertNotCalled(t, "ListByCompany", mock.Anything, mock.Anything, mock.Anything)
	ts.mockCompanies.AssertExpectations(t)
}

func TestService_Get_OwnershipEnforced(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	promoID := uuid.New()

	stored := &Promocode{CompanyID: uuid.New(), Mode: ModeCommon, MaxCount: 10}
	stored.ID = promoID
	ts.mockRepo.On("FindByID", ctx, promoID, true).Return(stored, nil).Once()

	_, err := ts.service.Get(ctx, uuid.New(), promoID)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Get_NotFound(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	promoID := uuid.New()

	ts.mockRepo.On("FindByID", ctx, promoID, true).
		Return(nil, common.ErrNotFound.WithDetails("Promocode not found.")).Once()

	_, err := ts.service.Get(ctx, uuid.New(), promoID)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Update_AppliesPartialFields(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()
	promoID := uuid.New()

	owner := &company.Company{Name: "Acme Inc"}
	owner.ID = companyID

	stored := &Promocode{CompanyID: companyID, Description: "Old description text here", Mode: ModeCommon, MaxCount: 100}
	stored.ID = promoID

	ts.mockRepo.On("FindByID", ctx, promoID, true).Return(stored, nil).Twice()
	ts.mockRepo.On("Update", ctx, mock.MatchedBy(func(p *Promocode) bool {
		return p.ID == promoID && p.Description == "Brand new description text"
	}), false).Return(nil).Once()
	ts.mockCompanies.On("FindByID", ctx, companyID).Return(owner, nil).Once()
	ts.expectCounters(ctx, []uuid.UUID{promoID},
		map[uuid.UUID]int64{},
		map[uuid.UUID]int64{},
		map[uuid.UUID]int64{},
	)

	view, err := ts.service.Update(ctx, companyID, promoID, UpdatePromoRequest{
		Description: strPtr("Brand new description text"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Brand new description text", view.Description)
	assert.Equal(t, "Acme Inc", view.CompanyName)
	ts.mockRepo.AssertExpectations(t)
	ts.mockCompanies.AssertExpectations(t)
}

func TestService_Update_ReplacesCategories(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()
	promoID := uuid.New()

	owner := &company.Company{Name: "Acme Inc"}
	owner.ID = companyID

	stored := &Promocode{
		CompanyID:  companyID,
		Mode:       ModeCommon,
		MaxCount:   100,
		Categories: []PromoCategory{{Name: "coffee"}},
	}
	stored.ID = promoID

	ts.mockRepo.On("FindByID", ctx, promoID, true).Return(stored, nil).Twice()
	ts.mockRepo.On("Update", ctx, mock.MatchedBy(func(p *Promocode) bool {
		return len(p.Categories) == 2 &&
			p.Categories[0].Name == "tea" && p.Categories[0].PromoID == promoID &&
			p.Categories[1].Name == "pastry" && p.Categories[1].PromoID == promoID
	}), true).Return(nil).Once()
	ts.mockCompanies.On("FindByID", ctx, companyID).Return(owner, nil).Once()
	ts.expectCounters(ctx, []uuid.UUID{promoID},
		map[uuid.UUID]int64{},
		map[uuid.UUID]int64{},
		map[uuid.UUID]int64{},
	)

	view, err := ts.service.Update(ctx, companyID, promoID, UpdatePromoRequest{
		Target: &Target{Categories: []string{"tea", "pastry"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"tea", "pastry"}, view.Target.Categories)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Update_UniqueNeedsSingleUse(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()
	promoID := uuid.New()

	stored := &Promocode{CompanyID: companyID, Mode: ModeUnique, MaxCount: 1}
	stored.ID = promoID
	ts.mockRepo.On("FindByID", ctx, promoID, true).Return(stored, nil).Once()

	_, err := ts.service.Update(ctx, companyID, promoID, UpdatePromoRequest{MaxCount: intPtr(5)})

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	ts.mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Update_ModeFlipCheckedAgainstResultingState(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	companyID := uuid.New()
	promoID := uuid.New()

	stored := &Promocode{CompanyID: companyID, Mode: ModeCommon, MaxCount: 10}
	stored.ID = promoID
	ts.mockRepo.On("FindByID", ctx, promoID, true).Return(stored, nil).Once()

	mode := ModeUnique
	_, err := ts.service.Update(ctx, companyID, promoID, UpdatePromoRequest{Mode: &mode})

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	ts.mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	ts.mockRepo.AssertExpectations(t)
}

func TestService_Update_OtherCompany(t *testing.T) {
	ts := setupPromoServiceTestSuite(t)
	ctx := context.Background()
	promoID := uuid.New()

	stored := &Promocode{CompanyID: uuid.New(), Mode: ModeCommon, MaxCount: 10}
	stored.ID = promoID
	ts.mockRepo.On("FindByID", ctx, promoID, true).Return(stored, nil).Once()

	_, err := ts.service.Update(ctx, uuid.New(), promoID, UpdatePromoRequest{Description: strPtr("Attempted hijack of a promo")})

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	ts.mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	ts.mockRepo.AssertExpectations(t)
}
