package e2e

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chatsphere/domain"
	"chatsphere/enforcement"
	"chatsphere/lifecycle"
	"chatsphere/moderation"
	"chatsphere/repositories"
	"chatsphere/services"
	"chatsphere/sink"
)

// BaseEngineSuite assembles the full engine over a real BadgerDB and a
// real bluge index, the way cmd/main wires it, minus the process plumbing.
type BaseEngineSuite struct {
	suite.Suite
	Config Config

	DB       *badger.DB
	Rooms    *repositories.RoomRepository
	Ledger   *repositories.LedgerRepository
	Settings *repositories.SettingsRepository
	Index    *repositories.ViolationIndex
	Identity *services.NicknameRegistry
	Notices  *sink.MemoryNotificationSink
	Manager  *lifecycle.Manager
	Policy   *enforcement.Policy
	Service  *services.RoomService
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseEngineSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseEngineSuite) SetupTest() {
	dataDir := s.Config.DataDir
	if dataDir == "" {
		dataDir = s.T().TempDir()
	}
	log := logs.GetLoggerFromString(s.Config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(filepath.Join(dataDir, "badger")).
		WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.DB = db

	index, err := repositories.NewViolationIndex(filepath.Join(dataDir, "bluge"), log)
	s.Require().NoError(err)
	s.Index = index

	s.Rooms = repositories.NewRoomRepository(db, log)
	s.Ledger = repositories.NewLedgerRepository(db, log)
	s.Settings = repositories.NewSettingsRepository(db)
	s.Identity = services.NewNicknameRegistry()
	s.Notices = sink.NewMemoryNotificationSink()

	presence := repositories.NewStorePresenceOracle(s.Rooms, log)
	classifier, err := moderation.NewClassifier()
	s.Require().NoError(err)

	s.Policy = enforcement.NewPolicy(s.Ledger, log)
	s.Manager = lifecycle.NewManager(s.Rooms, presence, s.Identity, lifecycle.DefaultConfig(), log)
	s.Require().NoError(s.Manager.SeedOfficialRooms())
	s.Require().NoError(s.Settings.Update(domain.AllDetectorsEnabled()))

	s.Service = services.NewRoomService(
		s.Manager, s.Settings, classifier, s.Policy, s.Index, s.Notices, log)
}

func (s *BaseEngineSuite) TearDownTest() {
	if s.Index != nil {
		s.Require().NoError(s.Index.Close())
	}
	if s.DB != nil {
		s.Require().NoError(s.DB.Close())
	}
}

// Step prints a colorized header so scenario phases stand out in the logs.
func (s *BaseEngineSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}
