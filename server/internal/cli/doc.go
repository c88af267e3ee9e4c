// Package cli implements the alertrelay command line.
//
//	alertrelay serve     run the webhook relay HTTP server (default command
//	                     of the container image)
//	alertrelay test      send one test notification, print the report
//	alertrelay config    print the resolved servers and topic
//	alertrelay version   print version information
//
// Settings come from RELAY_* and NTFY_* environment variables (and an
// optional .env file); the persistent flags override them.
package cli
