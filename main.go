package main

import "log"

func main() {
	log.SetFlags(0)

	args := getArgs()
	if args == nil {
		log.Fatal("bad arguments")
	}

	server := NewServer(Config{})
	if err := server.checkAndParseConfig(args.ConfigFile); err != nil {
		log.Fatalf("configuration problem: %s", err)
	}

	if args.ServerName != "" {
		server.Config.ServerName = args.ServerName
	}

	if err := server.Start(args.ListenFD); err != nil {
		log.Fatal(err)
	}

	log.Printf("server shutdown cleanly")
}
