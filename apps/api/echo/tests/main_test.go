package tests

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/kijani/apps/api/echo"
	"github.com/trezcool/kijani/core"
	"github.com/trezcool/kijani/core/growthtree"
	"github.com/trezcool/kijani/core/user"
	emailsvc "github.com/trezcool/kijani/services/email"
	inmemdb "github.com/trezcool/kijani/storage/database/inmem"
)

var (
	conf     *core.Config
	db       *inmemdb.DB
	app      *Server
	usrSvc   user.ServiceInterface
	treeSvc  growthtree.ServiceInterface
	treeRepo growthtree.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := core.NewStdLogger(log.New(ioutil.Discard, "", 0))

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	treeRepo = inmemdb.NewGrowthTreeRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(usrRepo, logger)
	treeSvc = growthtree.NewService(treeRepo, mailSvc, logger, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			TreeSvc:    treeSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func createUser(t *testing.T, name, uname, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := usrSvc.Create(context.Background(), user.NewUser{
		Name:     name,
		Username: uname,
		Email:    uname + "@kijani.test",
		Password: pwd,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}
