// Package token implementa la decodificación de bearer tokens de Syncup.
//
// Soporta dos familias de credenciales:
//
//   - Signed: JWT compacto de 3 segmentos, firmado con HMAC (secret compartido).
//   - Encrypted: JWE compacto de 5 segmentos estilo Auth.js (dir + A256CBC-HS512),
//     cuya clave se deriva por HKDF a partir del secret y un salt label que
//     depende del entorno.
//
// El flujo por request es: Classify → (SessionDecoder.Open | VerifySigned) →
// Normalize → Identity. Todas las funciones son puras respecto de la
// configuración (Config es read-only luego del startup) y seguras para uso
// concurrente.
package token
