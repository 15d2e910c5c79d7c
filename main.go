//	@title			defaultdesk API
//	@version		1.0
//	@description	Review and approval of customer default applications
//	@termsOfService	https://github.com/compozy/defaultdesk

//	@license.name	MIT
//	@license.url	https://github.com/compozy/defaultdesk/blob/main/LICENSE

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

//	@tag.name			auth
//	@tag.description	Login, logout and the current principal

//	@tag.name			users
//	@tag.description	User management (admin only)

//	@tag.name			customers
//	@tag.description	Customer records

//	@tag.name			reasons
//	@tag.description	Default reason catalog

//	@tag.name			applications
//	@tag.description	Default application workflow

//	@tag.name			attachments
//	@tag.description	Evidence files attached to pending applications

//	@tag.name			notifications
//	@tag.description	Per-user decision notifications

//	@tag.name			stats
//	@tag.description	Approved default statistics

//	@tag.name			audit
//	@tag.description	Audit trail queries (admin only)

//	@tag.name			health
//	@tag.description	Liveness and dependency health

package main

import (
	"os"

	"github.com/compozy/defaultdesk/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
