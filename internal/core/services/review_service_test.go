package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/core/services"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	mockTaskRepo *MockReviewTaskRepository
	mockLoanRepo *MockLoanRepository
	service      portssvc.ReviewSvcFacade

	ctx        context.Context
	reviewerID string
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.mockTaskRepo = new(MockReviewTaskRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.service = services.NewReviewService(suite.mockTaskRepo, suite.mockLoanRepo)
	suite.ctx = context.Background()
	suite.reviewerID = uuid.NewString()

	expectTx(&suite.mockTaskRepo.MockTxManager)
}

func (suite *ReviewServiceTestSuite) claimedTask() *domain.HumanReviewTask {
	reviewerID := suite.reviewerID
	return &domain.HumanReviewTask{
		TaskID:     uuid.NewString(),
		WorkflowID: uuid.NewString(),
		State:      domain.TaskOpen,
		ClaimantID: &reviewerID,
		Input: domain.ReviewTaskInput{
			Application: domain.LoanApplication{
				ApplicationID:   uuid.NewString(),
				UserID:          uuid.NewString(),
				RequestedAmount: decimal.NewFromInt(10000),
				Status:          domain.AppUnderReview,
			},
			CreditReport: domain.CreditReport{Score: 720, Band: "GOOD"},
			RiskAnalysis: domain.RiskAnalysis{
				DebtToIncome:   decimal.RequireFromString("0.125"),
				RiskBand:       "LOW",
				Recommendation: domain.DecisionApproved,
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func (suite *ReviewServiceTestSuite) TestCompleteTask_RejectionRequiresNotes() {
	task, err := suite.service.CompleteTask(suite.ctx, uuid.NewString(), suite.reviewerID, domain.DecisionRejected, "no", "")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(task)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "FindTaskByID", mock.Anything, mock.Anything)
}

func (suite *ReviewServiceTestSuite) TestCompleteTask_InvalidDecision() {
	task, err := suite.service.CompleteTask(suite.ctx, uuid.NewString(), suite.reviewerID, domain.ReviewDecision("MAYBE"), "", "")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(task)
}

func (suite *ReviewServiceTestSuite) TestCompleteTask_ClaimedByAnotherReviewer() {
	task := suite.claimedTask()
	otherReviewer := uuid.NewString()
	task.ClaimantID = &otherReviewer

	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(task, nil).Once()

	got, err := suite.service.CompleteTask(suite.ctx, task.TaskID, suite.reviewerID, domain.DecisionApproved, "", "")

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(got)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "CompleteTaskInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReviewServiceTestSuite) TestCompleteTask_AlreadyCompleted() {
	task := suite.claimedTask()
	task.State = domain.TaskCompleted

	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(task, nil).Once()

	got, err := suite.service.CompleteTask(suite.ctx, task.TaskID, suite.reviewerID, domain.DecisionApproved, "", "")

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(got)
}

func (suite *ReviewServiceTestSuite) TestCompleteTask_ApprovalGeneratesOffers() {
	task := suite.claimedTask()
	applicationID := task.WorkflowID

	completed := *task
	completed.State = domain.TaskCompleted

	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(task, nil).Once()
	suite.mockTaskRepo.On("CompleteTaskInTx", suite.ctx, mock.Anything, task.TaskID, suite.reviewerID,
		domain.DecisionApproved, "looks solid", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLoanRepo.On("TransitionApplicationStatusInTx", suite.ctx, mock.Anything, applicationID,
		domain.AppUnderReview, domain.AppApproved, "looks solid", mock.AnythingOfType("time.Time")).Return(nil).Once()

	var savedOffers []domain.LoanOffer
	suite.mockLoanRepo.On("SaveOffersInTx", suite.ctx, mock.Anything, mock.AnythingOfType("[]domain.LoanOffer")).
		Run(func(args mock.Arguments) { savedOffers = args.Get(2).([]domain.LoanOffer) }).
		Return(nil).Once()
	suite.mockLoanRepo.On("TransitionApplicationStatusInTx", suite.ctx, mock.Anything, applicationID,
		domain.AppApproved, domain.AppOffersPresented, "", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(&completed, nil).Once()

	got, err := suite.service.CompleteTask(suite.ctx, task.TaskID, suite.reviewerID, domain.DecisionApproved, "looks solid", "")

	suite.Require().NoError(err)
	suite.Equal(domain.TaskCompleted, got.State)

	suite.Require().Len(savedOffers, 3)
	wantAPR := map[int]string{12: "7.49", 24: "8.99", 36: "10.49"}
	for _, offer := range savedOffers {
		suite.Equal(task.Input.Application.ApplicationID, offer.ApplicationID)
		suite.True(offer.LoanAmount.Equal(decimal.NewFromInt(10000)))
		suite.Equal(wantAPR[offer.TermMonths], offer.APR.String(), "term %d", offer.TermMonths)
		suite.True(offer.MonthlyPayment.IsPositive())
		suite.True(offer.TotalPayment.Equal(offer.MonthlyPayment.Mul(decimal.NewFromInt(int64(offer.TermMonths)))))
		suite.False(offer.Void)
	}

	suite.mockTaskRepo.AssertExpectations(suite.T())
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *ReviewServiceTestSuite) TestCompleteTask_RejectionTransitionsApplication() {
	task := suite.claimedTask()

	completed := *task
	completed.State = domain.TaskCompleted

	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(task, nil).Once()
	suite.mockTaskRepo.On("CompleteTaskInTx", suite.ctx, mock.Anything, task.TaskID, suite.reviewerID,
		domain.DecisionRejected, "insufficient income history", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLoanRepo.On("TransitionApplicationStatusInTx", suite.ctx, mock.Anything, task.WorkflowID,
		domain.AppUnderReview, domain.AppRejected, "insufficient income history", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(&completed, nil).Once()

	got, err := suite.service.CompleteTask(suite.ctx, task.TaskID, suite.reviewerID, domain.DecisionRejected, "insufficient income history", "")

	suite.Require().NoError(err)
	suite.Equal(domain.TaskCompleted, got.State)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "SaveOffersInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReviewServiceTestSuite) TestClaimTask_ReturnsRefreshedTask() {
	task := suite.claimedTask()

	suite.mockTaskRepo.On("ClaimTask", suite.ctx, task.TaskID, suite.reviewerID).Return(nil).Once()
	suite.mockTaskRepo.On("FindTaskByID", suite.ctx, task.TaskID).Return(task, nil).Once()

	got, err := suite.service.ClaimTask(suite.ctx, task.TaskID, suite.reviewerID)

	suite.Require().NoError(err)
	suite.True(got.IsClaimedBy(suite.reviewerID))
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
