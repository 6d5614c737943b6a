package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/course"
	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/services/email"
	"github.com/trezcool/kazi/services/logger"
	"github.com/trezcool/kazi/storage/database"
	pgrepos "github.com/trezcool/kazi/storage/database/postgres"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	workDir, err := os.Getwd()
	errAndDie(std, err)
	conf, err := core.NewConfig(workDir)
	errAndDie(std, err)

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	errAndDie(std, database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Migrate(db.DB))

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	usrSvc := user.NewService(pgrepos.NewUserRepository(db), mailSvc, conf)
	crsSvc := course.NewService(pgrepos.NewCourseRepository(db))
	grpSvc := group.NewService(pgrepos.NewGroupRepository(db))
	tskSvc := task.NewService(pgrepos.NewTaskRepository(db), grpSvc)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:      conf,
		Logger:    logger,
		UserSvc:   usrSvc,
		CourseSvc: crsSvc,
		GroupSvc:  grpSvc,
		TaskSvc:   tskSvc,
	})

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		errAndDie(std, err)
	case <-app.Shutdown():
		std.Println("integrity issue: shutting down...")
	case sig := <-quit:
		std.Printf("%v: shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err = app.Stop(ctx); err != nil {
		std.Printf("graceful shutdown failed: %v", err)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
