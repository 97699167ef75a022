package evaluator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/gomail.v2"

	"charly/pkg/object"
)

// installNatives binds the native modules (SPEC_FULL.md §3) and the
// supplemented Array/String built-ins (SPEC_FULL.md §4) into global before
// any prelude runs. None of these depend on prelude source: scripts can use
// them with `--no-prelude`.
func installNatives(global *object.Scope) {
	_ = global.Write("Crypto", newNamespace(map[string]nativeFn{
		"hash":   cryptoHash,
		"verify": cryptoVerify,
	}), object.Init)

	_ = global.Write("JWT", newNamespace(map[string]nativeFn{
		"sign":   jwtSign,
		"verify": jwtVerify,
	}), object.Init)

	_ = global.Write("Mail", newNamespace(map[string]nativeFn{
		"send": mailSend,
	}), object.Init)

	_ = global.Write("Socket", newNamespace(map[string]nativeFn{
		"dial": socketDial,
	}), object.Init)

	installArrayPrimitive(global)
	installStringPrimitive(global)
}

type nativeFn func(self object.Value, args []object.Value) (object.Value, error)

// newNamespace is a bare Null value repurposed to carry native members
// (every Value's data scope is a general-purpose member table, spec.md
// §3.1) — the simplest way to expose a Go-backed module without adding a
// dedicated AST-visible kind for it.
func newNamespace(methods map[string]nativeFn) *object.Null {
	ns := object.NewNull()
	for name, fn := range methods {
		_ = ns.Data().Write(name, object.NewNativeFunction(name, fn), object.Init)
	}
	return ns
}

func argString(args []object.Value, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("expected argument %d", i)
	}
	s, ok := args[i].(*object.String)
	if !ok {
		return "", fmt.Errorf("expected argument %d to be a String, got %s", i, args[i].Kind())
	}
	return s.Value, nil
}

// --- Crypto: golang.org/x/crypto/bcrypt, grounded on pkg/eval/auth_helpers.go ---

func cryptoHash(_ object.Value, args []object.Value) (object.Value, error) {
	password, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return object.NewString(string(hash)), nil
}

func cryptoVerify(_ object.Value, args []object.Value) (object.Value, error) {
	hash, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	password, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	ok := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	return object.NewBoolean(ok), nil
}

// --- JWT: github.com/golang-jwt/jwt/v5, grounded on pkg/eval/auth_helpers.go ---

func jwtSign(_ object.Value, args []object.Value) (object.Value, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("JWT.sign(payload, secret, expiresIn) expects 3 arguments")
	}
	payload, ok := args[0].(*object.Object)
	if !ok {
		return nil, fmt.Errorf("JWT.sign payload must be an Object")
	}
	secret, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	expiresIn, err := argString(args, 2)
	if err != nil {
		return nil, err
	}
	duration, err := time.ParseDuration(expiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %s", err)
	}

	claims := jwt.MapClaims{}
	for _, name := range flattenProperties(payload.Class) {
		// Only declared properties become claims: payload.Data() also holds
		// the class's methods (constructObject installs both into the same
		// scope), and those aren't claim data.
		value, err := payload.Data().Get(name, object.IgnoreParent)
		if err != nil {
			continue
		}
		claims[name] = valueToGo(value)
	}
	claims["exp"] = time.Now().Add(duration).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}
	return object.NewString(signed), nil
}

func jwtVerify(_ object.Value, args []object.Value) (object.Value, error) {
	tokenString, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	secret, err := argString(args, 1)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return object.NewNull(), nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return object.NewNull(), nil
	}

	result := object.NewNull()
	for k, v := range claims {
		_ = result.Data().Write(k, goToValue(v), object.Init)
	}
	return result, nil
}

// --- Mail: gopkg.in/gomail.v2, grounded on pkg/eval/eval.go's mail module ---

func mailSend(_ object.Value, args []object.Value) (object.Value, error) {
	to, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	subject, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	body, err := argString(args, 2)
	if err != nil {
		return nil, err
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" || smtpPortStr == "" {
		return nil, fmt.Errorf("SMTP_HOST and SMTP_PORT must be set")
	}
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be an integer")
	}

	from := smtpUser
	if from == "" {
		from = "noreply@example.com"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("failed to send email: %s", err)
	}
	return object.NewBoolean(true), nil
}

// --- Socket: github.com/gorilla/websocket, client side only — grounded on
// pkg/eval/ws_helpers.go, repurposed as a Dial client since the evaluator
// has no HTTP server to upgrade a request on (SPEC_FULL.md §5 Non-goals
// drop the route/service DSL the teacher used the server side for).

func socketDial(_ object.Value, args []object.Value) (object.Value, error) {
	url, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %s", err)
	}

	ns := object.NewNull()
	_ = ns.Data().Write("send", object.NewNativeFunction("send", func(_ object.Value, args []object.Value) (object.Value, error) {
		message, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			return nil, err
		}
		return object.NewBoolean(true), nil
	}), object.Init)
	_ = ns.Data().Write("receive", object.NewNativeFunction("receive", func(_ object.Value, args []object.Value) (object.Value, error) {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		return object.NewString(string(message)), nil
	}), object.Init)
	_ = ns.Data().Write("close", object.NewNativeFunction("close", func(_ object.Value, args []object.Value) (object.Value, error) {
		return object.NewBoolean(conn.Close() == nil), nil
	}), object.Init)
	return ns, nil
}

// valueToGo/goToValue convert between the evaluator's Value model and Go's
// native types at the boundary of a native module call (JWT claims, in
// particular, must round-trip through encoding/json-compatible types).
func valueToGo(v object.Value) interface{} {
	switch val := v.(type) {
	case *object.Null:
		return nil
	case *object.Boolean:
		return val.Value
	case *object.Numeric:
		return val.Value
	case *object.String:
		return val.Value
	case *object.Array:
		out := make([]interface{}, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = valueToGo(e)
		}
		return out
	default:
		return val.Inspect()
	}
}

func goToValue(v interface{}) object.Value {
	switch val := v.(type) {
	case nil:
		return object.NewNull()
	case bool:
		return object.NewBoolean(val)
	case float64:
		return object.NewNumeric(val)
	case string:
		return object.NewString(val)
	case []interface{}:
		elements := make([]object.Value, len(val))
		for i, e := range val {
			elements[i] = goToValue(e)
		}
		return object.NewArray(elements)
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

// --- Array / String supplemented built-ins (SPEC_FULL.md §4): available
// independent of any prelude, installed the same way a prelude's own
// `primitiveclass` block would be (classes.go's augment-on-redeclare path
// lets a prelude add `length` etc. alongside these without colliding).

func installArrayPrimitive(global *object.Scope) {
	p := object.NewPrimitiveClass("Array", global)
	install := func(name string, fn nativeFn) {
		_ = p.Data().Write(name, object.NewNativeFunction(name, fn), object.Init)
	}
	install("push", func(self object.Value, args []object.Value) (object.Value, error) {
		arr, ok := self.(*object.Array)
		if !ok {
			return nil, fmt.Errorf("push called on a non-Array receiver")
		}
		arr.Elements = append(arr.Elements, args...)
		return arr, nil
	})
	install("pop", func(self object.Value, args []object.Value) (object.Value, error) {
		arr, ok := self.(*object.Array)
		if !ok || len(arr.Elements) == 0 {
			return object.NewNull(), nil
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return last, nil
	})
	install("size", func(self object.Value, args []object.Value) (object.Value, error) {
		arr, ok := self.(*object.Array)
		if !ok {
			return object.NewNumeric(0), nil
		}
		return object.NewNumeric(float64(len(arr.Elements))), nil
	})
	_ = global.Write("Array", p, object.Init)
}

func installStringPrimitive(global *object.Scope) {
	p := object.NewPrimitiveClass("String", global)
	install := func(name string, fn nativeFn) {
		_ = p.Data().Write(name, object.NewNativeFunction(name, fn), object.Init)
	}
	install("upper", func(self object.Value, args []object.Value) (object.Value, error) {
		s, ok := self.(*object.String)
		if !ok {
			return object.NewNull(), nil
		}
		return object.NewString(strings.ToUpper(s.Value)), nil
	})
	install("lower", func(self object.Value, args []object.Value) (object.Value, error) {
		s, ok := self.(*object.String)
		if !ok {
			return object.NewNull(), nil
		}
		return object.NewString(strings.ToLower(s.Value)), nil
	})
	install("size", func(self object.Value, args []object.Value) (object.Value, error) {
		s, ok := self.(*object.String)
		if !ok {
			return object.NewNumeric(0), nil
		}
		return object.NewNumeric(float64(len(s.Value))), nil
	})
	_ = global.Write("String", p, object.Init)
}
