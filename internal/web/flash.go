package web

import "github.com/gofiber/fiber/v2"

const (
	flashSuccessKey = "flashSuccess"
	flashErrorKey   = "flashError"
)

// setFlash stores a one-shot message in the session; it survives exactly
// one redirect.
func (s *Server) setFlash(c *fiber.Ctx, key, message string) {
	sess, err := s.store.Get(c)
	if err != nil {
		return
	}
	sess.Set(key, message)
	_ = sess.Save()
}

// popFlash drains pending flash messages into template bindings.
func (s *Server) popFlash(c *fiber.Ctx, bind fiber.Map) fiber.Map {
	sess, err := s.store.Get(c)
	if err != nil {
		return bind
	}

	for _, key := range []string{flashSuccessKey, flashErrorKey} {
		if message, ok := sess.Get(key).(string); ok && message != "" {
			bind[key] = message
			sess.Delete(key)
		}
	}
	_ = sess.Save()
	return bind
}
