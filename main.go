package main

import "Tcp_postgres_redis_library_system/cmd"

func main() {
	cmd.Execute()
}
