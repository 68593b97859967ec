package campaign_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/errors"
	"github.com/grimforge/initiative-api/internal/orchestrators/campaign"
	mockclock "github.com/grimforge/initiative-api/internal/pkg/clock/mock"
	campaignrepo "github.com/grimforge/initiative-api/internal/repositories/campaign"
	campaignmock "github.com/grimforge/initiative-api/internal/repositories/campaign/mock"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	repo *campaignmock.MockRepository
	svc  campaign.Service
	ctx  context.Context
	now  time.Time
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = campaignmock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()
	s.now = time.UnixMilli(1700000000000)

	clk := mockclock.NewMockClock(s.ctrl)
	clk.EXPECT().Now().Return(s.now).AnyTimes()

	svc, err := campaign.New(&campaign.Config{Repo: s.repo, Clock: clk})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) listing(id, name string, lastUpdated int64) entities.CampaignListing {
	return entities.CampaignListing{
		ID:   id,
		Meta: entities.CampaignMeta{Name: name, LastUpdated: lastUpdated},
	}
}

func (s *OrchestratorTestSuite) TestSlugify() {
	tests := []struct {
		name string
		want string
	}{
		{"Lost Mines", "lost-mines"},
		{"Curse of Strahd!", "curse-of-strahd"},
		{"  --Rime: of the FROSTMAIDEN--  ", "rime-of-the-frostmaiden"},
		{"Tomb   of   Annihilation", "tomb-of-annihilation"},
		{"Dragons & Dungeons & Dragons", "dragons-dungeons-dragons"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		s.Equal(tt.want, campaign.Slugify(tt.name))
	}
}

func (s *OrchestratorTestSuite) TestListCampaignsSortsByRecency() {
	s.repo.EXPECT().List(s.ctx, campaignrepo.ListInput{}).Return(&campaignrepo.ListOutput{
		Campaigns: []entities.CampaignListing{
			s.listing("old", "Old", 100),
			s.listing("new", "New", 300),
			s.listing("mid", "Mid", 200),
		},
	}, nil)

	out, err := s.svc.ListCampaigns(s.ctx, &campaign.ListCampaignsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Campaigns, 3)
	s.Equal("new", out.Campaigns[0].ID)
	s.Equal("mid", out.Campaigns[1].ID)
	s.Equal("old", out.Campaigns[2].ID)
}

func (s *OrchestratorTestSuite) TestCreateCampaignWritesMetaAndEmptyData() {
	s.repo.EXPECT().GetMeta(s.ctx, campaignrepo.GetMetaInput{CampaignID: "lost-mines"}).
		Return(nil, errors.NotFound("campaign not found"))
	s.repo.EXPECT().SetMeta(s.ctx, campaignrepo.SetMetaInput{
		CampaignID: "lost-mines",
		Meta:       &entities.CampaignMeta{Name: "Lost Mines", LastUpdated: s.now.UnixMilli()},
	}).Return(nil)
	s.repo.EXPECT().SetData(s.ctx, campaignrepo.SetDataInput{
		CampaignID: "lost-mines",
		Data: &entities.CampaignData{
			CurrentRound: 1,
			LastUpdated:  s.now.UnixMilli(),
		},
	}).Return(nil)

	out, err := s.svc.CreateCampaign(s.ctx, &campaign.CreateCampaignInput{Name: "Lost Mines"})
	s.Require().NoError(err)
	s.Equal("lost-mines", out.CampaignID)
	s.False(out.Existing)
}

func (s *OrchestratorTestSuite) TestCreateCampaignExistingSlugDoesNotOverwrite() {
	s.repo.EXPECT().GetMeta(s.ctx, campaignrepo.GetMetaInput{CampaignID: "lost-mines"}).
		Return(&campaignrepo.GetMetaOutput{
			Meta: &entities.CampaignMeta{Name: "Lost Mines", LastUpdated: 50},
		}, nil)

	out, err := s.svc.CreateCampaign(s.ctx, &campaign.CreateCampaignInput{Name: "Lost! Mines!"})
	s.Require().NoError(err)
	s.Equal("lost-mines", out.CampaignID)
	s.True(out.Existing)
}

func (s *OrchestratorTestSuite) TestCreateCampaignRejectsUnsluggableName() {
	_, err := s.svc.CreateCampaign(s.ctx, &campaign.CreateCampaignInput{Name: "???"})
	s.Require().Error(err)
	s.Equal(errors.CodeInvalidArgument, errors.GetCode(err))

	_, err = s.svc.CreateCampaign(s.ctx, &campaign.CreateCampaignInput{Name: "  "})
	s.Require().Error(err)
	s.Equal(errors.CodeInvalidArgument, errors.GetCode(err))
}

func (s *OrchestratorTestSuite) TestRenameCampaignKeepsSlug() {
	s.repo.EXPECT().GetMeta(s.ctx, campaignrepo.GetMetaInput{CampaignID: "lost-mines"}).
		Return(&campaignrepo.GetMetaOutput{
			Meta: &entities.CampaignMeta{Name: "Lost Mines", LastUpdated: 50},
		}, nil)
	s.repo.EXPECT().SetMeta(s.ctx, campaignrepo.SetMetaInput{
		CampaignID: "lost-mines",
		Meta:       &entities.CampaignMeta{Name: "Phandelver", LastUpdated: s.now.UnixMilli()},
	}).Return(nil)

	_, err := s.svc.RenameCampaign(s.ctx, &campaign.RenameCampaignInput{
		CampaignID: "lost-mines",
		Name:       "Phandelver",
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestRenameCampaignNotFound() {
	s.repo.EXPECT().GetMeta(s.ctx, campaignrepo.GetMetaInput{CampaignID: "nope"}).
		Return(nil, errors.NotFound("campaign not found"))

	_, err := s.svc.RenameCampaign(s.ctx, &campaign.RenameCampaignInput{
		CampaignID: "nope",
		Name:       "Anything",
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestDeleteCampaignReturnsNextMostRecent() {
	s.repo.EXPECT().List(s.ctx, campaignrepo.ListInput{}).Return(&campaignrepo.ListOutput{
		Campaigns: []entities.CampaignListing{
			s.listing("strahd", "Curse of Strahd", 300),
			s.listing("lost-mines", "Lost Mines", 200),
			s.listing("avernus", "Descent", 100),
		},
	}, nil)
	s.repo.EXPECT().Delete(s.ctx, campaignrepo.DeleteInput{CampaignID: "strahd"}).Return(nil)

	out, err := s.svc.DeleteCampaign(s.ctx, &campaign.DeleteCampaignInput{CampaignID: "strahd"})
	s.Require().NoError(err)
	s.Equal("lost-mines", out.NextCampaignID)
}

func (s *OrchestratorTestSuite) TestDeleteLastCampaignRefused() {
	s.repo.EXPECT().List(s.ctx, campaignrepo.ListInput{}).Return(&campaignrepo.ListOutput{
		Campaigns: []entities.CampaignListing{
			s.listing("lost-mines", "Lost Mines", 200),
		},
	}, nil)

	_, err := s.svc.DeleteCampaign(s.ctx, &campaign.DeleteCampaignInput{CampaignID: "lost-mines"})
	s.Require().Error(err)
	s.Equal(errors.CodeFailedPrecondition, errors.GetCode(err))
}

func (s *OrchestratorTestSuite) TestDeleteUnknownCampaign() {
	s.repo.EXPECT().List(s.ctx, campaignrepo.ListInput{}).Return(&campaignrepo.ListOutput{
		Campaigns: []entities.CampaignListing{
			s.listing("lost-mines", "Lost Mines", 200),
			s.listing("strahd", "Curse of Strahd", 300),
		},
	}, nil)

	_, err := s.svc.DeleteCampaign(s.ctx, &campaign.DeleteCampaignInput{CampaignID: "nope"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestEnsureDefaultCreatesOnEmptyStore() {
	s.repo.EXPECT().List(s.ctx, campaignrepo.ListInput{}).Return(&campaignrepo.ListOutput{
		Campaigns: []entities.CampaignListing{},
	}, nil)
	s.repo.EXPECT().GetMeta(s.ctx, campaignrepo.GetMetaInput{CampaignID: "default-campaign"}).
		Return(nil, errors.NotFound("campaign not found"))
	s.repo.EXPECT().SetMeta(s.ctx, gomock.Any()).Return(nil)
	s.repo.EXPECT().SetData(s.ctx, gomock.Any()).Return(nil)

	out, err := s.svc.EnsureDefault(s.ctx, &campaign.EnsureDefaultInput{})
	s.Require().NoError(err)
	s.Equal("default-campaign", out.CampaignID)
	s.True(out.Created)
}

func (s *OrchestratorTestSuite) TestEnsureDefaultPrefersMostRecent() {
	s.repo.EXPECT().List(s.ctx, campaignrepo.ListInput{}).Return(&campaignrepo.ListOutput{
		Campaigns: []entities.CampaignListing{
			s.listing("old", "Old", 100),
			s.listing("new", "New", 300),
		},
	}, nil)

	out, err := s.svc.EnsureDefault(s.ctx, &campaign.EnsureDefaultInput{})
	s.Require().NoError(err)
	s.Equal("new", out.CampaignID)
	s.False(out.Created)
}
