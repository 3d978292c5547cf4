package main

import (
	"log"
	"os"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
	"github.com/shule-edu/shule/core/account"
	emailsvc "github.com/shule-edu/shule/services/email"
	logsvc "github.com/shule-edu/shule/services/logger"
	"github.com/shule-edu/shule/storage/database"
	sqlxrepos "github.com/shule-edu/shule/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(false)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// set up services; the CLI never sends real emails
	notifier := emailsvc.NewNotifier(emailsvc.NewConsoleServiceMock(conf))
	accountRepo := sqlxrepos.NewAccountRepository(db.DB)
	academicSvc := academic.NewService(sqlxrepos.NewAcademicRepository(db.DB))
	accountSvc := account.NewService(db, accountRepo, academicSvc, notifier, appLogger, conf)

	// start CLI
	cli := commandLine{
		db:          db,
		accountRepo: accountRepo,
		accountSvc:  accountSvc,
		academicSvc: academicSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
