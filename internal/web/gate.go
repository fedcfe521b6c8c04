package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/models"
)

const sessionUserKey = "userID"
const webUserKey = "webUser"

// routePolicy pairs a path predicate with an access requirement. Policies
// are evaluated in order, first match wins.
type routePolicy struct {
	prefix    string
	anonymous bool
	authority string
}

// webPolicies is the stateful web pipeline, independent of the API one.
// Admin-prefixed paths require the ADMIN authority; everything else needs
// some authenticated identity.
var webPolicies = []routePolicy{
	// API paths belong to the stateless bearer-token pipeline; the web
	// gate never touches them.
	{prefix: "/api", anonymous: true},
	{prefix: "/health", anonymous: true},
	{prefix: "/login", anonymous: true},
	{prefix: "/logout", anonymous: true},
	{prefix: "/access-denied", anonymous: true},
	{prefix: "/admin", authority: models.RoleNameAdmin.Authority()},
	{prefix: "/", anonymous: false},
}

// Gate enforces the web route policies against the session identity.
type Gate struct {
	DB    *gorm.DB
	Store *session.Store
}

func NewGate(db *gorm.DB, store *session.Store) *Gate {
	return &Gate{DB: db, Store: store}
}

func (g *Gate) Enforce(c *fiber.Ctx) error {
	policy := matchPolicy(c.Path())
	if policy.anonymous {
		return c.Next()
	}

	user := g.sessionUser(c)
	if user == nil {
		return c.Redirect("/login", fiber.StatusFound)
	}
	c.Locals(webUserKey, user)

	if policy.authority != "" && !hasAuthority(user, policy.authority) {
		return c.Redirect("/access-denied", fiber.StatusFound)
	}
	return c.Next()
}

func matchPolicy(path string) routePolicy {
	for _, policy := range webPolicies {
		if strings.HasPrefix(path, policy.prefix) {
			return policy
		}
	}
	// The catch-all "/" prefix always matches; this is unreachable.
	return routePolicy{}
}

// sessionUser resolves the session to a fresh identity; the role set is
// loaded from persistence on every request, not cached in the session.
func (g *Gate) sessionUser(c *fiber.Ctx) *models.User {
	sess, err := g.Store.Get(c)
	if err != nil {
		return nil
	}

	id, ok := sess.Get(sessionUserKey).(uint)
	if !ok {
		return nil
	}

	var user models.User
	if err := g.DB.Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		return nil
	}
	return &user
}

func hasAuthority(user *models.User, authority string) bool {
	for _, tag := range user.Authorities() {
		if tag == authority {
			return true
		}
	}
	return false
}

// CurrentWebUser returns the identity resolved by the gate for this
// request, or nil on anonymous routes.
func CurrentWebUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(webUserKey).(*models.User)
	return user
}
